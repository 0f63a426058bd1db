package entity

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTicketNotFound  = errors.New("ticket not found")

	// Cart mutations.
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrLineNotFound      = errors.New("cart line not found")

	// Checkout transitions.
	ErrEmptyCart           = errors.New("cart has no items")
	ErrInsufficientPayment = errors.New("tendered amount is less than total")
	ErrWrongState          = errors.New("operation not allowed in current checkout state")

	// Settlement.
	ErrStockConflict      = errors.New("stock changed since the sale was built")
	ErrDepartmentNotFound = errors.New("department not found")

	// Folio allocation.
	ErrFolioPoolExhausted = errors.New("no free folio in pool")
)
