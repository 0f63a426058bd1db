package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func trackedProduct(code int64, price string, onHand int) Product {
	return Product{
		Code:        code,
		Name:        "test product",
		Price:       dec(price),
		OnHand:      onHand,
		Unit:        "pieza",
		Department:  "Abarrotes",
		TracksStock: true,
	}
}

func TestCartAddMergesByCode(t *testing.T) {
	cart := NewCart()
	p := trackedProduct(100, "10.00", 5)

	require.NoError(t, cart.AddProduct(p, 1))
	require.NoError(t, cart.AddProduct(p, 2))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestCartAddRejectsZeroStock(t *testing.T) {
	cart := NewCart()

	err := cart.AddProduct(trackedProduct(100, "10.00", 0), 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, cart.Len())
}

func TestCartAddNeverExceedsOnHand(t *testing.T) {
	cart := NewCart()
	p := trackedProduct(100, "10.00", 2)

	require.NoError(t, cart.AddProduct(p, 2))

	err := cart.AddProduct(p, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The failed add must not have mutated the cart.
	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartAddUntrackedIgnoresStock(t *testing.T) {
	cart := NewCart()
	p := trackedProduct(100, "10.00", 0)
	p.TracksStock = false

	require.NoError(t, cart.AddProduct(p, 10))
	assert.Equal(t, 1, cart.Len())
}

func TestCartAddRejectsBadQuantity(t *testing.T) {
	cart := NewCart()
	err := cart.AddProduct(trackedProduct(100, "10.00", 5), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartTotal(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddProduct(trackedProduct(100, "10.00", 10), 2))
	require.NoError(t, cart.AddProduct(trackedProduct(200, "5.50", 10), 1))

	assert.True(t, cart.Total().Equal(dec("25.50")), "total = %s", cart.Total())

	cart.RemoveLine(200)
	assert.True(t, cart.Total().Equal(dec("20.00")), "total = %s", cart.Total())

	require.NoError(t, cart.SetLineQuantity(100, 1))
	assert.True(t, cart.Total().Equal(dec("10.00")), "total = %s", cart.Total())
}

func TestCartRemoveAbsentIsNoop(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddProduct(trackedProduct(100, "10.00", 10), 1))

	cart.RemoveLine(999)
	assert.Equal(t, 1, cart.Len())
}

func TestCartSetLineQuantity(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddProduct(trackedProduct(100, "10.00", 10), 1))

	require.NoError(t, cart.SetLineQuantity(100, 7))
	assert.Equal(t, 7, cart.Lines()[0].Quantity)

	assert.ErrorIs(t, cart.SetLineQuantity(100, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.SetLineQuantity(999, 3), ErrLineNotFound)
}

func TestCartClear(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddProduct(trackedProduct(100, "10.00", 10), 3))

	cart.Clear()
	assert.Equal(t, 0, cart.Len())
	assert.True(t, cart.Total().IsZero())
}

func TestCartInsertionOrderPreserved(t *testing.T) {
	cart := NewCart()
	for _, code := range []int64{300, 100, 200} {
		require.NoError(t, cart.AddProduct(trackedProduct(code, "1.00", 10), 1))
	}

	var codes []int64
	for _, l := range cart.Lines() {
		codes = append(codes, l.Product.Code)
	}
	assert.Equal(t, []int64{300, 100, 200}, codes)
}

func TestCartSnapshotIsolatedFromCatalog(t *testing.T) {
	cart := NewCart()
	p := trackedProduct(100, "10.00", 10)
	require.NoError(t, cart.AddProduct(p, 1))

	// A later catalog price change must not alter the in-progress sale.
	p.Price = dec("99.00")
	assert.True(t, cart.Total().Equal(dec("10.00")))
}

func TestCartTrackedDeductions(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddProduct(trackedProduct(100, "10.00", 10), 2))

	bag := trackedProduct(301, "5.00", 0)
	bag.TracksStock = false
	require.NoError(t, cart.AddProduct(bag, 1))

	decs := cart.TrackedDeductions()
	require.Len(t, decs, 1)
	assert.Equal(t, StockDeduction{Code: 100, Quantity: 2}, decs[0])
}

func TestCartTicketLines(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddProduct(trackedProduct(100, "10.00", 10), 2))

	lines := cart.TicketLines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(100), lines[0].Code)
	assert.True(t, lines[0].UnitPrice.Equal(dec("10.00")))
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Abarrotes", lines[0].Department)
}
