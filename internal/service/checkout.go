package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
	"github.com/thunkthsy/punto-de-venta/backend/internal/messaging"
	"github.com/thunkthsy/punto-de-venta/backend/internal/repository"
)

// Kafka topics for ticket lifecycle events.
const (
	TopicTicketsClosed     = "tickets.closed"
	TopicTicketsHeld       = "tickets.held"
	TopicInventoryDepleted = "inventory.depleted"
)

// State is the checkout workflow state.
type State string

const (
	StateBuilding        State = "building"
	StateAwaitingPayment State = "awaiting_payment"
	StateSettling        State = "settling"
	StateDone            State = "done"
)

// CheckoutService owns the single active cashier session: it builds the
// cart, runs the payment state machine and settles the sale against the
// stores. Every failure returns the workflow to Building with the cart
// intact so the cashier can retry.
type CheckoutService struct {
	catalog   repository.CatalogStore
	tickets   repository.TicketStore
	folios    FolioAllocator
	publisher messaging.Publisher

	mu       sync.Mutex
	cart     *entity.Cart
	state    State
	folio    int
	resumed  bool
	tendered decimal.Decimal
	change   decimal.Decimal
}

func NewCheckoutService(
	catalog repository.CatalogStore,
	tickets repository.TicketStore,
	folios FolioAllocator,
	publisher messaging.Publisher,
) *CheckoutService {
	return &CheckoutService{
		catalog:   catalog,
		tickets:   tickets,
		folios:    folios,
		publisher: publisher,
		cart:      entity.NewCart(),
		state:     StateBuilding,
	}
}

// Begin allocates the folio for the first ticket of the session.
func (s *CheckoutService) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocateFolio(ctx)
}

func (s *CheckoutService) allocateFolio(ctx context.Context) error {
	folio, err := s.folios.Next(ctx)
	if err != nil {
		s.folio = 0
		return fmt.Errorf("failed to allocate folio: %w", err)
	}
	s.folio = folio
	slog.Info("Folio allocated", "folio", folio)
	return nil
}

// ScanProduct looks the code up in the catalog and adds it to the cart.
func (s *CheckoutService) ScanProduct(ctx context.Context, code int64, qty int) (*entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return nil, entity.ErrWrongState
	}

	p, err := s.catalog.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.cart.AddProduct(*p, qty); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveLine drops a line from the cart; removing an absent code is a no-op.
func (s *CheckoutService) RemoveLine(code int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveLine(code)
}

// SetLineQuantity edits a line quantity in place.
func (s *CheckoutService) SetLineQuantity(code int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return entity.ErrWrongState
	}
	return s.cart.SetLineQuantity(code, qty)
}

// CartLines returns the current lines in display order.
func (s *CheckoutService) CartLines() []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Total returns the running cart total.
func (s *CheckoutService) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// State returns the current workflow state.
func (s *CheckoutService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Folio returns the folio assigned to the ticket being built.
func (s *CheckoutService) Folio() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folio
}

// Change returns the change computed by the last successful Tender.
func (s *CheckoutService) Change() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.change
}

// Charge moves a non-empty cart to AwaitingPayment.
func (s *CheckoutService) Charge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return entity.ErrWrongState
	}
	if s.cart.Len() == 0 {
		return entity.ErrEmptyCart
	}
	s.state = StateAwaitingPayment
	return nil
}

// Tender captures the payment and settles the sale. The tendered amount
// must cover the total; the returned change is tendered minus total.
func (s *CheckoutService) Tender(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPayment {
		return decimal.Zero, entity.ErrWrongState
	}

	total := s.cart.Total()
	if amount.LessThan(total) {
		// Stay in AwaitingPayment so the cashier can re-enter the amount.
		return decimal.Zero, entity.ErrInsufficientPayment
	}

	s.tendered = amount
	s.change = amount.Sub(total)
	s.state = StateSettling

	ticket, depleted, err := s.settle(ctx)
	if err != nil {
		s.state = StateBuilding
		return decimal.Zero, err
	}

	s.state = StateDone
	slog.Info("Ticket closed", "folio", ticket.Folio, "total", ticket.Total, "change", s.change)

	s.publish(ctx, TopicTicketsClosed, ticket.ID.String(), entity.TicketClosed{
		TicketID: ticket.ID,
		Folio:    ticket.Folio,
		Total:    ticket.Total,
		Tendered: s.tendered,
		Change:   s.change,
		Lines:    ticket.Lines,
		ClosedAt: ticket.CreatedAt,
	})
	for _, code := range depleted {
		s.publish(ctx, TopicInventoryDepleted, fmt.Sprintf("%d", code), entity.StockDepleted{
			Code:  code,
			Folio: ticket.Folio,
		})
	}

	change := s.change
	if err := s.reset(ctx); err != nil {
		// The sale is already durable; only the next folio is missing.
		return change, err
	}
	return change, nil
}

// settle decrements stock for every tracked line, then persists the
// closed ticket. The stock decrement is all-or-nothing; a conflict
// aborts before anything is written.
func (s *CheckoutService) settle(ctx context.Context) (*entity.Ticket, []int64, error) {
	depleted, err := s.catalog.DecrementStock(ctx, s.cart.TrackedDeductions())
	if err != nil {
		return nil, nil, fmt.Errorf("stock decrement failed: %w", err)
	}

	ticket := s.buildTicket(entity.StatusClosed)
	if err := s.persist(ctx, ticket); err != nil {
		return nil, nil, err
	}
	return ticket, depleted, nil
}

// Hold persists the cart as an open ticket without payment or stock
// decrement, freeing the register for the next customer.
func (s *CheckoutService) Hold(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return entity.ErrWrongState
	}
	if s.cart.Len() == 0 {
		return entity.ErrEmptyCart
	}

	ticket := s.buildTicket(entity.StatusOpen)
	if err := s.persist(ctx, ticket); err != nil {
		return err
	}

	slog.Info("Ticket held", "folio", ticket.Folio, "total", ticket.Total)
	s.publish(ctx, TopicTicketsHeld, ticket.ID.String(), entity.TicketHeld{
		TicketID: ticket.ID,
		Folio:    ticket.Folio,
		Total:    ticket.Total,
		Lines:    ticket.Lines,
		HeldAt:   ticket.CreatedAt,
	})

	return s.reset(ctx)
}

// Resume loads a held ticket into the cart, reconciling every line
// against the live catalog. Settling a resumed ticket replaces its rows
// instead of inserting new ones.
func (s *CheckoutService) Resume(ctx context.Context, folio int) ([]ReconcileNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return nil, entity.ErrWrongState
	}

	ticket, err := s.tickets.FindByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}

	cart, notes, err := reconcileTicket(ctx, s.catalog, ticket)
	if err != nil {
		return nil, err
	}

	s.cart = cart
	s.folio = folio
	s.resumed = true
	for _, n := range notes {
		slog.Info("Reconciled held ticket line", "folio", folio, "code", n.Code, "note", n.Note)
	}
	return notes, nil
}

// Abandon discards the in-progress cart and returns to Building. The
// current folio stays assigned.
func (s *CheckoutService) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.state = StateBuilding
}

func (s *CheckoutService) buildTicket(status entity.TicketStatus) *entity.Ticket {
	return &entity.Ticket{
		ID:        uuid.New(),
		Folio:     s.folio,
		Status:    status,
		Total:     s.cart.Total(),
		CreatedAt: time.Now(),
		Lines:     s.cart.TicketLines(),
	}
}

func (s *CheckoutService) persist(ctx context.Context, t *entity.Ticket) error {
	if s.resumed {
		if err := s.tickets.Replace(ctx, t); err != nil {
			return fmt.Errorf("ticket replace failed: %w", err)
		}
		return nil
	}
	if err := s.tickets.Save(ctx, t); err != nil {
		return fmt.Errorf("ticket save failed: %w", err)
	}
	return nil
}

func (s *CheckoutService) publish(ctx context.Context, topic, key string, event entity.Event) {
	if err := s.publisher.PublishEvent(ctx, topic, key, event); err != nil {
		slog.Error("Failed to publish event", "topic", topic, "type", event.EventType(), "err", err)
	}
}

// reset starts the next sale: clear the cart, drop the resumed flag and
// allocate a fresh folio.
func (s *CheckoutService) reset(ctx context.Context) error {
	s.cart.Clear()
	s.resumed = false
	s.state = StateBuilding
	return s.allocateFolio(ctx)
}
