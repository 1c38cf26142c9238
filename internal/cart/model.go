package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID        string `json:"id"`
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ItemView is a cart item joined with the live product fields a buyer (and
// the checkout engine) needs to look at.
type ItemView struct {
	Item
	Title      string          `json:"title"`
	Slug       string          `json:"slug"`
	PriceToman decimal.Decimal `json:"price_toman"`
	Stock      int             `json:"stock"`
	Active     bool            `json:"active"`
}

// AddItemRequest payload for adding a product to the cart.
// swagger:model AddItemRequest
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity" example:"1"`
}

// UpdateItemRequest payload for changing a cart line's quantity.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}
