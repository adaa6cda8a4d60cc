package domain

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultCountry is used when shipping details omit the country.
const DefaultCountry = "US"

// OrderIDPrefix prefixes every generated order id.
const OrderIDPrefix = "ORDER-"

// CheckoutStep is the position of a session in the checkout flow.
type CheckoutStep string

const (
	CheckoutDetails CheckoutStep = "details"
	CheckoutSuccess CheckoutStep = "success"
)

// ShippingDetails are the customer's delivery details collected at checkout.
type ShippingDetails struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Address   string `json:"address" validate:"required,max=200"`
	City      string `json:"city" validate:"required,max=100"`
	State     string `json:"state" validate:"required,max=100"`
	Zip       string `json:"zip" validate:"required,max=20"`
	Country   string `json:"country" validate:"omitempty,len=2"`
}

// Normalize trims whitespace and applies the default country.
func (d ShippingDetails) Normalize() ShippingDetails {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(d.Email)
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	d.State = strings.TrimSpace(d.State)
	d.Zip = strings.TrimSpace(d.Zip)
	d.Country = strings.ToUpper(strings.TrimSpace(d.Country))
	if d.Country == "" {
		d.Country = DefaultCountry
	}
	return d
}

// OrderRequest is what the order collaborator receives on checkout.
type OrderRequest struct {
	SessionID string          `json:"session_id"`
	Lines     []CartLine      `json:"lines"`
	Shipping  ShippingDetails `json:"shipping"`
}

// OrderResult is the outcome reported by the order collaborator.
type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
}

// NewOrderID generates a fresh order id.
func NewOrderID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return OrderIDPrefix + id[:9]
}
