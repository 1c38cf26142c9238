package order

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNotFound      = errors.New("order not found")
	ErrBadTransition = errors.New("invalid status transition")

	// ErrTransaction covers any lower-level persistence failure during the
	// atomic phase. Nothing was committed, so the buyer may simply retry.
	ErrTransaction = errors.New("order transaction failed")
)

// InsufficientStockError reports a line whose requested quantity exceeds the
// currently available stock.
type InsufficientStockError struct {
	Title     string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.Title, e.Available, e.Requested)
}

// ProductUnavailableError reports a cart line whose product has been
// deactivated or removed since it was added.
type ProductUnavailableError struct {
	Title string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is no longer available", e.Title)
}
