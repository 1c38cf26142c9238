package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dastkala/dastkala-api/internal/cart"
)

// CartStore is the slice of the cart repository checkout needs.
type CartStore interface {
	GetOrCreate(ctx context.Context, userID string) (*cart.Cart, error)
	Items(ctx context.Context, cartID string) ([]cart.ItemView, error)
}

// Service converts a buyer's cart into a durable order.
type Service struct {
	orders   Repository
	carts    CartStore
	shipping decimal.Decimal
}

func NewService(orders Repository, carts CartStore, shippingCostToman int64) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		shipping: decimal.NewFromInt(shippingCostToman),
	}
}

// Checkout validates the cart, then hands the atomic phase to the repository.
// The precondition pass here is advisory only; the repository re-validates
// every line inside the transaction.
func (s *Service) Checkout(ctx context.Context, userID string, ship ShippingInfo) (*Order, error) {
	if err := ship.Validate(); err != nil {
		return nil, err
	}

	ct, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	items, err := s.carts.Items(ctx, ct.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]Line, 0, len(items))
	for _, it := range items {
		if !it.Active {
			return nil, &ProductUnavailableError{Title: it.Title}
		}
		if it.Stock < it.Quantity {
			return nil, &InsufficientStockError{Title: it.Title, Available: it.Stock, Requested: it.Quantity}
		}
		lines = append(lines, Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	var addr2 *string
	if ship.Address2 != "" {
		addr2 = &ship.Address2
	}
	o := &Order{
		ID:         uuid.NewString(),
		UserID:     userID,
		Status:     StatusPending,
		FullName:   ship.FullName,
		Phone:      ship.Phone,
		Address1:   ship.Address1,
		Address2:   addr2,
		City:       ship.City,
		Province:   ship.Province,
		PostalCode: ship.PostalCode,
	}

	placed, err := s.orders.Place(ctx, o, lines, ct.ID, s.shipping)
	if err != nil {
		switch err.(type) {
		case *InsufficientStockError, *ProductUnavailableError:
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	return placed, nil
}

// UpdateStatus advances an order through the lifecycle state machine. A
// seller may only touch orders containing at least one of their own products;
// anything else reads as not found.
func (s *Service) UpdateStatus(ctx context.Context, orderID, sellerID, newStatus string) (*Order, error) {
	current, _, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	owns, err := s.orders.ContainsSellerProduct(ctx, orderID, sellerID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, ErrNotFound
	}
	if !canTransition(current.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s to %s", ErrBadTransition, current.Status, newStatus)
	}
	if err := s.orders.UpdateStatus(ctx, orderID, current.Status, newStatus); err != nil {
		return nil, err
	}
	current.Status = newStatus
	return current, nil
}
