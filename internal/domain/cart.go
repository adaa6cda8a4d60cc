package domain

import (
	"github.com/shopspring/decimal"
)

// CartLine is one product in the cart together with its requested quantity.
// Quantity is always at least 1 for a line present in a cart.
type CartLine struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered sequence of lines keyed by product id.
//
// Cart values are immutable: every operation returns a new Cart and never
// writes to the receiver's backing array.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Add increments the quantity of p's line, or appends a new line with quantity 1.
func (c Cart) Add(p Product) Cart {
	lines := make([]CartLine, 0, len(c.Lines)+1)
	found := false
	for _, l := range c.Lines {
		if l.ProductID == p.ID {
			l.Quantity++
			found = true
		}
		lines = append(lines, l)
	}
	if !found {
		lines = append(lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Category:  p.Category,
			Image:     p.Image,
			Quantity:  1,
		})
	}
	return Cart{Lines: lines}
}

// UpdateQuantity sets the quantity of the line for productID to
// max(0, quantity+delta) and drops every line whose quantity is 0.
// It is a no-op when no line matches.
func (c Cart) UpdateQuantity(productID, delta int) Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ProductID == productID {
			l.Quantity = max(0, l.Quantity+delta)
		}
		if l.Quantity > 0 {
			lines = append(lines, l)
		}
	}
	return Cart{Lines: lines}
}

// Total is the sum of price × quantity over all lines. It is computed on
// every call.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// Line returns the line for productID.
func (c Cart) Line(productID int) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CartSummary is the read model returned to clients.
type CartSummary struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

// Summary builds the read model for the cart in the given currency.
func (c Cart) Summary(currency string) CartSummary {
	lines := c.Lines
	if lines == nil {
		lines = []CartLine{}
	}
	return CartSummary{
		Lines:     lines,
		ItemCount: c.ItemCount(),
		Total:     c.Total(),
		Currency:  currency,
	}
}
