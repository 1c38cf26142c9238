package order

import "fmt"

// ShippingInfo carries the required delivery fields captured at checkout.
// swagger:model ShippingInfo
type ShippingInfo struct {
	FullName   string `json:"full_name"   example:"Maryam Hosseini"`
	Phone      string `json:"phone"       example:"+98 912 000 0000"`
	Address1   string `json:"address1"    example:"No. 12, Enghelab St."`
	Address2   string `json:"address2"`
	City       string `json:"city"        example:"Tehran"`
	Province   string `json:"province"    example:"Tehran"`
	PostalCode string `json:"postal_code" example:"1234567890"`
}

// Validate checks every required shipping field is present.
func (s ShippingInfo) Validate() error {
	required := []struct{ name, value string }{
		{"full_name", s.FullName},
		{"phone", s.Phone},
		{"address1", s.Address1},
		{"city", s.City},
		{"province", s.Province},
		{"postal_code", s.PostalCode},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}
	return nil
}

// CheckoutRequest payload for placing an order from the current cart.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	ShippingInfo ShippingInfo `json:"shipping_info"`
}

// UpdateStatusRequest payload for advancing an order's lifecycle.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"SHIPPED"`
}
