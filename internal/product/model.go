package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Eligibility statuses assigned by the enrichment classifier.
const (
	EligibilityPending  = "PENDING"
	EligibilityApproved = "APPROVED"
	EligibilityRejected = "REJECTED"
	EligibilityReview   = "REVIEW"
)

type Product struct {
	ID          string  `json:"id"`
	SellerID    string  `json:"seller_id"`
	CategoryID  *string `json:"category_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Slug        string  `json:"slug"`
	// Whole-toman amount; NUMERIC in Postgres to avoid rounding surprises
	PriceToman            decimal.Decimal `json:"price_toman"`
	Stock                 int             `json:"stock"`
	Active                bool            `json:"active"`
	EligibilityStatus     string          `json:"eligibility_status"`
	EligibilityConfidence *int            `json:"eligibility_confidence,omitempty"`
	EligibilityReasons    *string         `json:"eligibility_reasons,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type Category struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Translation is the stored copy of a product's text in another locale.
// At most one row exists per (product, locale).
type Translation struct {
	ProductID   string    `json:"product_id"`
	Locale      string    `json:"locale"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	SourceHash  string    `json:"source_hash"`
	UpdatedAt   time.Time `json:"updated_at"`
}
