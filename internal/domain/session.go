package domain

import "time"

// ViewState is the top-level page a session is looking at.
type ViewState string

const (
	ViewHome  ViewState = "HOME"
	ViewShop  ViewState = "SHOP"
	ViewAbout ViewState = "ABOUT"
)

// IsValid reports whether v is a known view.
func (v ViewState) IsValid() bool {
	switch v {
	case ViewHome, ViewShop, ViewAbout:
		return true
	}
	return false
}

// Session is the per-visitor state: one cart plus the UI selections.
type Session struct {
	ID                string       `json:"id"`
	View              ViewState    `json:"view"`
	Cart              Cart         `json:"cart"`
	SelectedCategory  string       `json:"selected_category"`
	SelectedProductID *int         `json:"selected_product_id,omitempty"`
	CartOpen          bool         `json:"cart_open"`
	CheckoutStep      CheckoutStep `json:"checkout_step"`
	LastOrderID       string       `json:"last_order_id,omitempty"`
	Version           int          `json:"version"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// NewSession returns the initial state for a new visitor.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:               id,
		View:             ViewHome,
		Cart:             Cart{Lines: []CartLine{}},
		SelectedCategory: AllCategories,
		CheckoutStep:     CheckoutDetails,
		UpdatedAt:        now,
	}
}

// The transitions below are pure: each returns the next state and leaves
// the receiver untouched.

// AddToCart adds p to the cart, opens the cart drawer and closes any open
// product detail.
func (s Session) AddToCart(p Product) Session {
	s.Cart = s.Cart.Add(p)
	s.CartOpen = true
	s.SelectedProductID = nil
	return s
}

// UpdateQuantity applies delta to the cart line for productID.
func (s Session) UpdateQuantity(productID, delta int) Session {
	s.Cart = s.Cart.UpdateQuantity(productID, delta)
	return s
}

// SetView switches the active page. Leaving the shop keeps the category.
func (s Session) SetView(v ViewState) Session {
	s.View = v
	return s
}

// SelectCategory sets the category filter and switches to the shop view.
func (s Session) SelectCategory(category string) Session {
	s.SelectedCategory = category
	s.View = ViewShop
	return s
}

// OpenProduct shows the detail view for productID.
func (s Session) OpenProduct(productID int) Session {
	id := productID
	s.SelectedProductID = &id
	return s
}

// CloseProduct dismisses the product detail view.
func (s Session) CloseProduct() Session {
	s.SelectedProductID = nil
	return s
}

// OpenCart opens the cart drawer.
func (s Session) OpenCart() Session {
	s.CartOpen = true
	return s
}

// CloseCart closes the cart drawer.
func (s Session) CloseCart() Session {
	s.CartOpen = false
	return s
}

// CompleteCheckout records a successful order: the cart is emptied, the
// drawer closed and the checkout moves to the success step.
func (s Session) CompleteCheckout(orderID string) Session {
	s.Cart = Cart{Lines: []CartLine{}}
	s.CartOpen = false
	s.CheckoutStep = CheckoutSuccess
	s.LastOrderID = orderID
	return s
}

// ResetCheckout returns the checkout flow to the details step.
func (s Session) ResetCheckout() Session {
	s.CheckoutStep = CheckoutDetails
	s.LastOrderID = ""
	return s
}
