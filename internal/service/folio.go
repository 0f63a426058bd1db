package service

import (
	"context"
	"fmt"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
)

// FolioAllocator hands out the folio for the next ticket. The two
// implementations are mutually exclusive policies selected once at
// startup; they must not be combined within one deployment.
type FolioAllocator interface {
	Next(ctx context.Context) (int, error)
}

// SequentialAllocator assigns max(folio)+1 over every ticket ever
// persisted, so a folio number is never reused historically.
type SequentialAllocator struct {
	tickets repository.TicketStore
}

func NewSequentialAllocator(tickets repository.TicketStore) *SequentialAllocator {
	return &SequentialAllocator{tickets: tickets}
}

func (a *SequentialAllocator) Next(ctx context.Context) (int, error) {
	max, err := a.tickets.MaxFolio(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to seed next folio: %w", err)
	}
	return max + 1, nil
}

// PoolAllocator limits concurrent open tickets to a small fixed pool:
// folios live in [1, size] and a folio returns to the pool as soon as
// its ticket closes.
type PoolAllocator struct {
	tickets repository.TicketStore
	size    int
}

func NewPoolAllocator(tickets repository.TicketStore, size int) *PoolAllocator {
	return &PoolAllocator{tickets: tickets, size: size}
}

// Available returns every folio in the pool not held by an open ticket,
// in ascending order.
func (a *PoolAllocator) Available(ctx context.Context) ([]int, error) {
	open, err := a.tickets.OpenFolios(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open folios: %w", err)
	}

	taken := make(map[int]bool, len(open))
	for _, folio := range open {
		taken[folio] = true
	}

	var free []int
	for folio := 1; folio <= a.size; folio++ {
		if !taken[folio] {
			free = append(free, folio)
		}
	}
	return free, nil
}

func (a *PoolAllocator) Next(ctx context.Context) (int, error) {
	free, err := a.Available(ctx)
	if err != nil {
		return 0, err
	}
	if len(free) == 0 {
		return 0, entity.ErrFolioPoolExhausted
	}
	return free[0], nil
}
