package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
)

const productColumns = `
	p.code, p.name, p.description, p.price, p.on_hand, p.tracks_stock,
	u.label, d.name
	FROM products p
	JOIN units u ON p.unit_id = u.id
	JOIN departments d ON p.department_id = d.id`

type catalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a CatalogStore backed by Postgres.
func NewCatalogStore(db *sql.DB) repository.CatalogStore {
	return &catalogStore{db: db}
}

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.Code, &p.Name, &p.Description, &p.Price, &p.OnHand, &p.TracksStock, &p.Unit, &p.Department)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogStore) FindByCode(ctx context.Context, code int64) (*entity.Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" WHERE p.code = $1", code)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %d: %w", code, err)
	}
	return p, nil
}

func (s *catalogStore) SearchByName(ctx context.Context, name string) ([]entity.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" WHERE p.name ILIKE $1 ORDER BY p.name",
		"%"+name+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *catalogStore) FindByDepartment(ctx context.Context, department string) ([]entity.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" WHERE d.name = $1 ORDER BY p.name",
		department,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products for department %q: %w", department, err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *catalogStore) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" ORDER BY p.name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (s *catalogStore) FindZeroStock(ctx context.Context) ([]entity.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" WHERE p.tracks_stock AND p.on_hand = 0 ORDER BY p.name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query zero-stock products: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]entity.Product, error) {
	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (s *catalogStore) DecrementStock(ctx context.Context, decs []entity.StockDeduction) ([]int64, error) {
	if len(decs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var depleted []int64
	for _, d := range decs {
		var remaining int
		err := tx.QueryRowContext(ctx,
			"UPDATE products SET on_hand = on_hand - $1 WHERE code = $2 AND on_hand >= $1 RETURNING on_hand",
			d.Quantity, d.Code,
		).Scan(&remaining)
		if err == sql.ErrNoRows {
			// Not enough stock (or the product vanished). The deferred
			// rollback undoes every decrement applied so far.
			return nil, fmt.Errorf("product %d: %w", d.Code, entity.ErrStockConflict)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", d.Code, err)
		}
		if remaining == 0 {
			depleted = append(depleted, d.Code)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return depleted, nil
}

func (s *catalogStore) Departments(ctx context.Context) ([]entity.Department, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM departments ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []entity.Department
	for rows.Next() {
		var d entity.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating department rows: %w", err)
	}
	return departments, nil
}

func (s *catalogStore) Units(ctx context.Context) ([]entity.Unit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, label FROM units ORDER BY label")
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []entity.Unit
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.Label); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unit rows: %w", err)
	}
	return units, nil
}
