package repository

import (
	"context"
	"time"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
)

// CatalogStore handles persistence for products, departments and units.
type CatalogStore interface {
	FindByCode(ctx context.Context, code int64) (*entity.Product, error)
	SearchByName(ctx context.Context, name string) ([]entity.Product, error)
	// FindByDepartment lists the products of one department by its name.
	FindByDepartment(ctx context.Context, department string) ([]entity.Product, error)
	FindAll(ctx context.Context) ([]entity.Product, error)
	// FindZeroStock lists stock-tracked products whose on-hand count is zero.
	FindZeroStock(ctx context.Context) ([]entity.Product, error)
	// DecrementStock applies every deduction in one transaction. If any
	// product's on-hand count is lower than its deduction, nothing is
	// written and ErrStockConflict is returned. It reports the codes
	// whose on-hand count reached zero.
	DecrementStock(ctx context.Context, decs []entity.StockDeduction) ([]int64, error)
	Departments(ctx context.Context) ([]entity.Department, error)
	Units(ctx context.Context) ([]entity.Unit, error)
}

// TicketStore handles persistence for tickets and their sold lines.
type TicketStore interface {
	// Save writes the ticket header and all lines atomically.
	Save(ctx context.Context, t *entity.Ticket) error
	// Replace deletes all rows for the open ticket with t's folio, then
	// performs Save semantics, all inside one transaction.
	Replace(ctx context.Context, t *entity.Ticket) error
	// FindByFolio returns the open ticket with its lines in sale order.
	FindByFolio(ctx context.Context, folio int) (*entity.Ticket, error)
	OpenFolios(ctx context.Context) ([]int, error)
	ClosedFoliosOn(ctx context.Context, date time.Time) ([]int, error)
	// MaxFolio returns the highest folio ever assigned, 0 when none.
	MaxFolio(ctx context.Context) (int, error)
}
