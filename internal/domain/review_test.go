package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRating_NoReviews(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(Product{ID: 1}))
}

func TestAverageRating_Mean(t *testing.T) {
	p := Product{ID: 1, Reviews: []Review{{Rating: 5}, {Rating: 5}, {Rating: 4}}}
	assert.InDelta(t, 14.0/3.0, AverageRating(p), 1e-9)
}

func TestSummarize(t *testing.T) {
	p := Product{ID: 1, Reviews: []Review{{Rating: 5}, {Rating: 4}}}
	s := Summarize(p)
	assert.Equal(t, 2, s.TotalCount)
	assert.InDelta(t, 4.5, s.AverageRating, 1e-9)
}

func TestNewReview_StampsIDAndDate(t *testing.T) {
	now := time.Date(2024, 3, 7, 22, 15, 0, 0, time.UTC)
	r := NewReview(ReviewInput{Author: "Mina", Rating: 4, Comment: "Cute"}, now)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "2024-03-07", r.Date)
	assert.Equal(t, "Mina", r.Author)
	assert.Equal(t, 4, r.Rating)
}

func TestNewReview_UniqueIDs(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		r := NewReview(ReviewInput{Author: "a", Rating: 5, Comment: "c"}, time.Now())
		_, dup := seen[r.ID]
		require.False(t, dup)
		seen[r.ID] = struct{}{}
	}
}

func TestAddReview_PrependsAndCounts(t *testing.T) {
	catalog := MockProducts()
	before, _ := FindProduct(catalog, 1)

	for i := 1; i <= 3; i++ {
		r := NewReview(ReviewInput{Author: "Ann", Rating: 3, Comment: "ok"}, time.Now())
		next, ok := AddReview(catalog, 1, r)
		require.True(t, ok)

		got, _ := FindProduct(next, 1)
		require.Len(t, got.Reviews, len(before.Reviews)+i)
		assert.Equal(t, r.ID, got.Reviews[0].ID)
		catalog = next
	}
}

func TestAddReview_LeavesOtherProductsAndInputUntouched(t *testing.T) {
	catalog := MockProducts()
	r := NewReview(ReviewInput{Author: "Ann", Rating: 2, Comment: "meh"}, time.Now())

	next, ok := AddReview(catalog, 6, r)
	require.True(t, ok)

	orig, _ := FindProduct(catalog, 6)
	assert.Len(t, orig.Reviews, 1)

	for i := range catalog {
		if catalog[i].ID == 6 {
			continue
		}
		assert.Equal(t, catalog[i], next[i])
	}
}

func TestAddReview_UnknownProduct(t *testing.T) {
	catalog := MockProducts()
	next, ok := AddReview(catalog, 404, Review{ID: "x", Rating: 5})
	assert.False(t, ok)
	assert.Equal(t, catalog, next)
}

func TestIsValidRating(t *testing.T) {
	for r := -1; r <= 7; r++ {
		assert.Equal(t, r >= 1 && r <= 5, IsValidRating(r), "rating %d", r)
	}
}
