package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event represents a domain event.
type Event interface {
	EventType() string
}

// TicketClosed is emitted when a sale is paid and settled.
type TicketClosed struct {
	TicketID uuid.UUID       `json:"ticket_id"`
	Folio    int             `json:"folio"`
	Total    decimal.Decimal `json:"total"`
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
	Lines    []TicketLine    `json:"lines"`
	ClosedAt time.Time       `json:"closed_at"`
}

func (e TicketClosed) EventType() string { return "TicketClosed" }

// TicketHeld is emitted when a sale is parked for later without payment
// or stock decrement.
type TicketHeld struct {
	TicketID uuid.UUID       `json:"ticket_id"`
	Folio    int             `json:"folio"`
	Total    decimal.Decimal `json:"total"`
	Lines    []TicketLine    `json:"lines"`
	HeldAt   time.Time       `json:"held_at"`
}

func (e TicketHeld) EventType() string { return "TicketHeld" }

// StockDepleted is emitted when a settlement drives a product's on-hand
// count to zero.
type StockDepleted struct {
	Code  int64 `json:"code"`
	Folio int   `json:"folio"`
}

func (e StockDepleted) EventType() string { return "StockDepleted" }
