package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunkthsy/punto-de-venta/backend/internal/entity"
)

func storedTicket(folio int, status entity.TicketStatus) *entity.Ticket {
	return &entity.Ticket{
		ID:        uuid.New(),
		Folio:     folio,
		Status:    status,
		Total:     dec("10.00"),
		CreatedAt: time.Now(),
	}
}

func TestSequentialAllocatorStartsAtOne(t *testing.T) {
	alloc := NewSequentialAllocator(newMemTickets())

	folio, err := alloc.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, folio)
}

func TestSequentialAllocatorNeverRepeats(t *testing.T) {
	tickets := newMemTickets()
	alloc := NewSequentialAllocator(tickets)
	ctx := context.Background()

	require.NoError(t, tickets.Save(ctx, storedTicket(4, entity.StatusClosed)))

	folio, err := alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, folio)

	// Closing a ticket does not release its number for this policy.
	require.NoError(t, tickets.Save(ctx, storedTicket(5, entity.StatusClosed)))
	folio, err = alloc.Next(ctx)
	require.NoError(t, err)
	assert.Greater(t, folio, 5)
}

func TestPoolAllocatorSkipsOpenFolios(t *testing.T) {
	tickets := newMemTickets()
	alloc := NewPoolAllocator(tickets, 5)
	ctx := context.Background()

	require.NoError(t, tickets.Save(ctx, storedTicket(1, entity.StatusOpen)))
	require.NoError(t, tickets.Save(ctx, storedTicket(3, entity.StatusOpen)))

	free, err := alloc.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5}, free)

	folio, err := alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, folio)
}

func TestPoolAllocatorReusesClosedFolios(t *testing.T) {
	tickets := newMemTickets()
	alloc := NewPoolAllocator(tickets, 5)
	ctx := context.Background()

	// Folio 1 was used and closed; it returns to the pool.
	require.NoError(t, tickets.Save(ctx, storedTicket(1, entity.StatusClosed)))

	folio, err := alloc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, folio)
}

func TestPoolAllocatorExhausted(t *testing.T) {
	tickets := newMemTickets()
	alloc := NewPoolAllocator(tickets, 2)
	ctx := context.Background()

	require.NoError(t, tickets.Save(ctx, storedTicket(1, entity.StatusOpen)))
	require.NoError(t, tickets.Save(ctx, storedTicket(2, entity.StatusOpen)))

	_, err := alloc.Next(ctx)
	assert.ErrorIs(t, err, entity.ErrFolioPoolExhausted)
}
