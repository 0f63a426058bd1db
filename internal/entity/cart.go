package entity

import "github.com/shopspring/decimal"

// CartLine pairs a product snapshot with a quantity inside a cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price × quantity for this line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the ordered collection of lines for the sale being built.
// Insertion order is display order, and no two lines share a product
// code. A cart belongs to one checkout session; it is not safe for
// concurrent use.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// AddProduct adds qty of p to the cart, merging into an existing line
// when the code is already present. For stock-tracked products the
// resulting line quantity may never exceed the snapshot's on-hand
// count; violations leave the cart unchanged.
func (c *Cart) AddProduct(p Product, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if p.TracksStock && p.OnHand == 0 {
		return ErrOutOfStock
	}

	for i := range c.lines {
		if c.lines[i].Product.Code == p.Code {
			if p.TracksStock && c.lines[i].Quantity+qty > p.OnHand {
				return ErrInsufficientStock
			}
			c.lines[i].Quantity += qty
			return nil
		}
	}

	if p.TracksStock && qty > p.OnHand {
		return ErrInsufficientStock
	}
	c.lines = append(c.lines, CartLine{Product: p, Quantity: qty})
	return nil
}

// RemoveLine removes the line for code. Removing an absent code is a
// no-op.
func (c *Cart) RemoveLine(code int64) {
	for i := range c.lines {
		if c.lines[i].Product.Code == code {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// SetLineQuantity edits a line's quantity in place. The cashier edits
// quantities directly in the grid, so no stock recheck happens here.
func (c *Cart) SetLineQuantity(code int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.lines {
		if c.lines[i].Product.Code == code {
			c.lines[i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

// Total returns the sum of price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the lines in display order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TicketLines converts the cart into sold-line rows for persistence.
func (c *Cart) TicketLines() []TicketLine {
	lines := make([]TicketLine, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, TicketLine{
			Code:       l.Product.Code,
			Name:       l.Product.Name,
			UnitPrice:  l.Product.Price,
			Quantity:   l.Quantity,
			Department: l.Product.Department,
		})
	}
	return lines
}

// TrackedDeductions returns the stock decrements a settlement of this
// cart requires, covering only lines whose product tracks stock.
func (c *Cart) TrackedDeductions() []StockDeduction {
	var decs []StockDeduction
	for _, l := range c.lines {
		if l.Product.TracksStock {
			decs = append(decs, StockDeduction{Code: l.Product.Code, Quantity: l.Quantity})
		}
	}
	return decs
}
