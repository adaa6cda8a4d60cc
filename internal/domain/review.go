package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is an immutable customer review. Date is an ISO calendar date (YYYY-MM-DD).
type Review struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}

// ReviewInput is the customer-supplied part of a review.
type ReviewInput struct {
	Author  string `json:"author" validate:"required,max=80"`
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}

// NewReview stamps input with a fresh id and the calendar date of now.
func NewReview(input ReviewInput, now time.Time) Review {
	return Review{
		ID:      uuid.NewString(),
		Author:  input.Author,
		Rating:  input.Rating,
		Comment: input.Comment,
		Date:    now.Format(time.DateOnly),
	}
}

// IsValidRating reports whether r is within [MinRating, MaxRating].
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// AverageRating is the arithmetic mean of the product's ratings, or 0 when
// the product has no reviews.
func AverageRating(p Product) float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.Reviews))
}

// Summarize returns the review summary for p.
func Summarize(p Product) ReviewSummary {
	return ReviewSummary{
		AverageRating: AverageRating(p),
		TotalCount:    len(p.Reviews),
	}
}

// AddReview returns a new catalog in which review is the first review of the
// product with productID. Other products are shared unchanged. The second
// result is false when no such product exists, in which case products is
// returned as is.
func AddReview(products []Product, productID int, review Review) ([]Product, bool) {
	idx := -1
	for i := range products {
		if products[i].ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return products, false
	}

	next := make([]Product, len(products))
	copy(next, products)

	updated := next[idx]
	reviews := make([]Review, 0, len(updated.Reviews)+1)
	reviews = append(reviews, review)
	reviews = append(reviews, updated.Reviews...)
	updated.Reviews = reviews
	next[idx] = updated

	return next, true
}
