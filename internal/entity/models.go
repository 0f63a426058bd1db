package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog item at the moment it was read from the
// store. Cart lines hold a copy of it, so later catalog changes do not
// alter an in-progress sale.
type Product struct {
	Code        int64           `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	OnHand      int             `json:"on_hand"`
	Unit        string          `json:"unit"`
	Department  string          `json:"department"`
	TracksStock bool            `json:"tracks_stock"`
}

// Department groups products for reporting.
type Department struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Unit is a unit-of-measure label (piece, kg, liter...).
type Unit struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// TicketStatus is the lifecycle state of a persisted ticket.
type TicketStatus string

const (
	StatusOpen   TicketStatus = "open"   // held sale, folio still occupied
	StatusClosed TicketStatus = "closed" // paid and settled
)

// TicketLine is a sold-line row. UnitPrice is the price at the time of
// sale, not the current catalog price.
type TicketLine struct {
	Code       int64           `json:"code"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Department string          `json:"department"`
}

// Ticket is the durable record of an open or closed sale. In memory it
// is only a DTO; the ticket store owns it once persisted.
type Ticket struct {
	ID        uuid.UUID       `json:"id"`
	Folio     int             `json:"folio"`
	Status    TicketStatus    `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Lines     []TicketLine    `json:"lines"`
}

// StockDeduction is one pending on-hand decrement for a settling sale.
type StockDeduction struct {
	Code     int64
	Quantity int
}
