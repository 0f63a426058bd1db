package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
)

// StockAlerts is a projection fed from the inventory depletion topic.
// It tracks which products have sold out so the register can warn the
// cashier without re-querying the catalog.
type StockAlerts struct {
	mu    sync.Mutex
	codes map[int64]int // product code -> folio of the depleting sale
}

func NewStockAlerts() *StockAlerts {
	return &StockAlerts{codes: make(map[int64]int)}
}

// Handle consumes one StockDepleted payload. The first depletion of a
// product logs a warning; repeats only refresh the recorded folio.
func (a *StockAlerts) Handle(ctx context.Context, payload []byte) error {
	var event entity.StockDepleted
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal StockDepleted event: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, seen := a.codes[event.Code]; !seen {
		slog.Warn("Product sold out", "code", event.Code, "folio", event.Folio)
	}
	a.codes[event.Code] = event.Folio
	return nil
}

// Depleted returns the sold-out product codes in ascending order.
func (a *StockAlerts) Depleted() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	codes := make([]int64, 0, len(a.codes))
	for code := range a.codes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
