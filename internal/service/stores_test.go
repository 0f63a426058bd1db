package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// memCatalog is an in-memory CatalogStore for workflow tests.
type memCatalog struct {
	products map[int64]entity.Product
}

func newMemCatalog(products ...entity.Product) *memCatalog {
	m := &memCatalog{products: make(map[int64]entity.Product)}
	for _, p := range products {
		m.products[p.Code] = p
	}
	return m
}

func (m *memCatalog) FindByCode(ctx context.Context, code int64) (*entity.Product, error) {
	p, ok := m.products[code]
	if !ok {
		return nil, entity.ErrProductNotFound
	}
	cp := p
	return &cp, nil
}

func (m *memCatalog) SearchByName(ctx context.Context, name string) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memCatalog) FindByDepartment(ctx context.Context, department string) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range m.products {
		if p.Department == department {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memCatalog) FindAll(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memCatalog) FindZeroStock(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range m.products {
		if p.TracksStock && p.OnHand == 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memCatalog) DecrementStock(ctx context.Context, decs []entity.StockDeduction) ([]int64, error) {
	// Validate first so a conflict leaves nothing decremented.
	for _, d := range decs {
		p, ok := m.products[d.Code]
		if !ok || p.OnHand < d.Quantity {
			return nil, fmt.Errorf("product %d: %w", d.Code, entity.ErrStockConflict)
		}
	}

	var depleted []int64
	for _, d := range decs {
		p := m.products[d.Code]
		p.OnHand -= d.Quantity
		m.products[d.Code] = p
		if p.OnHand == 0 {
			depleted = append(depleted, d.Code)
		}
	}
	return depleted, nil
}

func (m *memCatalog) Departments(ctx context.Context) ([]entity.Department, error) {
	return []entity.Department{{ID: 1, Name: "Abarrotes"}}, nil
}

func (m *memCatalog) Units(ctx context.Context) ([]entity.Unit, error) {
	return []entity.Unit{{ID: 1, Label: "pieza"}}, nil
}

// memTickets is an in-memory TicketStore for workflow tests.
type memTickets struct {
	open        map[int]*entity.Ticket
	closed      []*entity.Ticket
	maxFolio    int
	saveErr     error           // injected failure for Save and Replace
	departments map[string]bool // nil accepts any department label
}

func newMemTickets() *memTickets {
	return &memTickets{open: make(map[int]*entity.Ticket)}
}

// resolveDepartments mirrors the line insert's department lookup: an
// unknown label aborts the write.
func (m *memTickets) resolveDepartments(t *entity.Ticket) error {
	if m.departments == nil {
		return nil
	}
	for _, line := range t.Lines {
		if !m.departments[line.Department] {
			return fmt.Errorf("department %q: %w", line.Department, entity.ErrDepartmentNotFound)
		}
	}
	return nil
}

func (m *memTickets) record(t *entity.Ticket) {
	cp := *t
	if t.Status == entity.StatusOpen {
		m.open[t.Folio] = &cp
	} else {
		m.closed = append(m.closed, &cp)
	}
	if t.Folio > m.maxFolio {
		m.maxFolio = t.Folio
	}
}

func (m *memTickets) Save(ctx context.Context, t *entity.Ticket) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if err := m.resolveDepartments(t); err != nil {
		return err
	}
	m.record(t)
	return nil
}

func (m *memTickets) Replace(ctx context.Context, t *entity.Ticket) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if err := m.resolveDepartments(t); err != nil {
		return err
	}
	delete(m.open, t.Folio)
	m.record(t)
	return nil
}

func (m *memTickets) FindByFolio(ctx context.Context, folio int) (*entity.Ticket, error) {
	t, ok := m.open[folio]
	if !ok {
		return nil, entity.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTickets) OpenFolios(ctx context.Context) ([]int, error) {
	var folios []int
	for folio := range m.open {
		folios = append(folios, folio)
	}
	sort.Ints(folios)
	return folios, nil
}

func (m *memTickets) ClosedFoliosOn(ctx context.Context, date time.Time) ([]int, error) {
	day := date.Format("2006-01-02")
	var folios []int
	for _, t := range m.closed {
		if t.CreatedAt.Format("2006-01-02") == day {
			folios = append(folios, t.Folio)
		}
	}
	sort.Ints(folios)
	return folios, nil
}

func (m *memTickets) MaxFolio(ctx context.Context) (int, error) {
	return m.maxFolio, nil
}

var (
	_ repository.CatalogStore = (*memCatalog)(nil)
	_ repository.TicketStore  = (*memTickets)(nil)
)
