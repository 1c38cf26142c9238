package product

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated catalog response.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// category slug filter applied
	Category string `json:"category,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	Items  []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Title       string `json:"title"       example:"گلدان سفالی"`
	Description string `json:"description" example:"سفال دست‌ساز لالجین"`
	PriceToman  string `json:"price_toman" example:"450000"`
	Stock       int    `json:"stock"       example:"10"`
	Category    string `json:"category"    example:"ceramics"`
	Slug        string `json:"slug"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PriceToman  string `json:"price_toman"`
	Stock       *int   `json:"stock"`
	Active      *bool  `json:"active"`
	Category    string `json:"category"`
}
