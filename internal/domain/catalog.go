package domain

// AllCategories is the pseudo-category meaning "no filter applied".
const AllCategories = "All"

// FeaturedCount is the number of products shown on the home view.
const FeaturedCount = 4

// Categories returns "All" followed by the distinct product categories in
// the order they first appear in the catalog.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}

// IsKnownCategory reports whether category is "All" or the category of some product.
func IsKnownCategory(products []Product, category string) bool {
	if category == AllCategories {
		return true
	}
	for _, p := range products {
		if p.Category == category {
			return true
		}
	}
	return false
}

// FilterByCategory returns the products visible under category. "All"
// yields the whole catalog; an unmatched category yields an empty, non-nil slice.
func FilterByCategory(products []Product, category string) []Product {
	if category == AllCategories {
		out := make([]Product, len(products))
		copy(out, products)
		return out
	}
	out := []Product{}
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns at most n products from the front of the catalog.
func Featured(products []Product, n int) []Product {
	if n > len(products) {
		n = len(products)
	}
	out := make([]Product, n)
	copy(out, products[:n])
	return out
}
