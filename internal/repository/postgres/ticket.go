package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
)

type ticketStore struct {
	db *sql.DB
}

// NewTicketStore creates a TicketStore backed by Postgres.
func NewTicketStore(db *sql.DB) repository.TicketStore {
	return &ticketStore{db: db}
}

func (s *ticketStore) Save(ctx context.Context, t *entity.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertTicket(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *ticketStore) Replace(ctx context.Context, t *entity.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ticket_lines cascade on ticket delete.
	_, err = tx.ExecContext(ctx,
		"DELETE FROM tickets WHERE folio = $1 AND status = $2",
		t.Folio, entity.StatusOpen,
	)
	if err != nil {
		return fmt.Errorf("failed to delete ticket folio %d: %w", t.Folio, err)
	}

	if err := insertTicket(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertTicket writes the header row and every sold line inside the
// caller's transaction, resolving each line's department label.
func insertTicket(ctx context.Context, tx *sql.Tx, t *entity.Ticket) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO tickets (id, folio, status, total, created_at) VALUES ($1, $2, $3, $4, $5)",
		t.ID, t.Folio, t.Status, t.Total, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket folio %d: %w", t.Folio, err)
	}

	for i, line := range t.Lines {
		var departmentID int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM departments WHERE name = $1", line.Department,
		).Scan(&departmentID)
		if err == sql.ErrNoRows {
			return fmt.Errorf("department %q: %w", line.Department, entity.ErrDepartmentNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve department %q: %w", line.Department, err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO ticket_lines (ticket_id, position, product_code, name, unit_price, quantity, department_id) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			t.ID, i, line.Code, line.Name, line.UnitPrice, line.Quantity, departmentID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ticket line %d: %w", line.Code, err)
		}
	}
	return nil
}

func (s *ticketStore) FindByFolio(ctx context.Context, folio int) (*entity.Ticket, error) {
	var t entity.Ticket
	err := s.db.QueryRowContext(ctx,
		"SELECT id, folio, status, total, created_at FROM tickets WHERE folio = $1 AND status = $2",
		folio, entity.StatusOpen,
	).Scan(&t.ID, &t.Folio, &t.Status, &t.Total, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, entity.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket folio %d: %w", folio, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.product_code, l.name, l.unit_price, l.quantity, d.name
		FROM ticket_lines l
		JOIN departments d ON l.department_id = d.id
		WHERE l.ticket_id = $1
		ORDER BY l.position`,
		t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line entity.TicketLine
		if err := rows.Scan(&line.Code, &line.Name, &line.UnitPrice, &line.Quantity, &line.Department); err != nil {
			return nil, fmt.Errorf("failed to scan ticket line: %w", err)
		}
		t.Lines = append(t.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket line rows: %w", err)
	}
	return &t, nil
}

func (s *ticketStore) OpenFolios(ctx context.Context) ([]int, error) {
	return s.folios(ctx,
		"SELECT folio FROM tickets WHERE status = $1 ORDER BY folio",
		entity.StatusOpen,
	)
}

func (s *ticketStore) ClosedFoliosOn(ctx context.Context, date time.Time) ([]int, error) {
	return s.folios(ctx,
		"SELECT folio FROM tickets WHERE status = $1 AND DATE(created_at) = DATE($2) ORDER BY folio",
		entity.StatusClosed, date,
	)
}

func (s *ticketStore) folios(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query folios: %w", err)
	}
	defer rows.Close()

	var folios []int
	for rows.Next() {
		var folio int
		if err := rows.Scan(&folio); err != nil {
			return nil, fmt.Errorf("failed to scan folio: %w", err)
		}
		folios = append(folios, folio)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folio rows: %w", err)
	}
	return folios, nil
}

func (s *ticketStore) MaxFolio(ctx context.Context) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(folio), 0) FROM tickets").Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query max folio: %w", err)
	}
	return max, nil
}
