package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
)

func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS departments (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS units (
			id SERIAL PRIMARY KEY,
			label TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS products (
			code BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			on_hand INT NOT NULL DEFAULT 0,
			tracks_stock BOOLEAN NOT NULL DEFAULT TRUE,
			unit_id INT NOT NULL REFERENCES units(id),
			department_id INT NOT NULL REFERENCES departments(id)
		);

		CREATE TABLE IF NOT EXISTS tickets (
			id UUID PRIMARY KEY,
			folio INT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			total NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS tickets_open_folio
			ON tickets (folio) WHERE status = 'open';

		CREATE TABLE IF NOT EXISTS ticket_lines (
			id SERIAL PRIMARY KEY,
			ticket_id UUID NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
			position INT NOT NULL,
			product_code BIGINT NOT NULL,
			name TEXT NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL,
			quantity INT NOT NULL DEFAULT 1,
			department_id INT NOT NULL REFERENCES departments(id)
		);
	`)
	return err
}

// SeedCatalog inserts a starter catalog when the products table is
// empty, so a fresh install has something to sell.
func SeedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	departments := []entity.Department{
		{Name: "Abarrotes", Description: "Groceries and dry goods"},
		{Name: "Bebidas", Description: "Drinks"},
		{Name: "Limpieza", Description: "Cleaning supplies"},
	}
	for _, d := range departments {
		if _, err := db.Exec(
			"INSERT INTO departments (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
			d.Name, d.Description,
		); err != nil {
			return fmt.Errorf("failed to seed department %s: %w", d.Name, err)
		}
	}

	for _, label := range []string{"pieza", "kg", "litro"} {
		if _, err := db.Exec(
			"INSERT INTO units (label) VALUES ($1) ON CONFLICT (label) DO NOTHING", label,
		); err != nil {
			return fmt.Errorf("failed to seed unit %s: %w", label, err)
		}
	}

	products := []entity.Product{
		{Code: 100, Name: "Arroz 1kg", Description: "White rice, 1 kg bag", Price: decimal.RequireFromString("32.50"), OnHand: 40, Unit: "pieza", Department: "Abarrotes", TracksStock: true},
		{Code: 101, Name: "Frijol negro 1kg", Description: "Black beans, 1 kg bag", Price: decimal.RequireFromString("38.00"), OnHand: 25, Unit: "pieza", Department: "Abarrotes", TracksStock: true},
		{Code: 200, Name: "Refresco cola 600ml", Description: "Cola soft drink", Price: decimal.RequireFromString("18.00"), OnHand: 120, Unit: "pieza", Department: "Bebidas", TracksStock: true},
		{Code: 201, Name: "Agua 1L", Description: "Bottled water", Price: decimal.RequireFromString("12.00"), OnHand: 80, Unit: "litro", Department: "Bebidas", TracksStock: true},
		{Code: 300, Name: "Detergente 500g", Description: "Powder detergent", Price: decimal.RequireFromString("27.90"), OnHand: 30, Unit: "pieza", Department: "Limpieza", TracksStock: true},
		{Code: 301, Name: "Bolsa para mandado", Description: "Reusable shopping bag", Price: decimal.RequireFromString("5.00"), OnHand: 0, Unit: "pieza", Department: "Limpieza", TracksStock: false},
	}
	for _, p := range products {
		_, err := db.Exec(`
			INSERT INTO products (code, name, description, price, on_hand, tracks_stock, unit_id, department_id)
			VALUES ($1, $2, $3, $4, $5, $6,
				(SELECT id FROM units WHERE label = $7),
				(SELECT id FROM departments WHERE name = $8))`,
			p.Code, p.Name, p.Description, p.Price, p.OnHand, p.TracksStock, p.Unit, p.Department,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %d: %w", p.Code, err)
		}
	}

	slog.Info("Seeded catalog", "products", len(products))
	return nil
}
