package domain

import (
	"github.com/shopspring/decimal"
)

// Product represents a purchasable item in the catalog.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Reviews     []Review        `json:"reviews"`
	PrintifyID  string          `json:"printify_id,omitempty"`
}

// ProductView is a product decorated with its review summary, as shown on
// product cards and in the product detail view.
type ProductView struct {
	Product
	Summary ReviewSummary `json:"summary"`
}

// NewProductView builds the view model for p.
func NewProductView(p Product) ProductView {
	return ProductView{Product: p, Summary: Summarize(p)}
}

// FindProduct returns the product with the given id.
func FindProduct(products []Product, id int) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
