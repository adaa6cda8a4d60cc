package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/event"
	apperrors "github.com/mochico/storefront/pkg/errors"
	"github.com/mochico/storefront/pkg/pagination"
	"github.com/mochico/storefront/pkg/validator"
)

// ============================================================================
// Queries
// ============================================================================

func TestCatalog_Products_All(t *testing.T) {
	svc := newTestCatalog()

	res := svc.Products(context.Background(), "", pagination.DefaultParams())
	assert.Equal(t, 8, res.TotalCount)
	require.Len(t, res.Items, 8)
	assert.Equal(t, 1, res.Items[0].ID)
	assert.InDelta(t, 4.5, res.Items[0].Summary.AverageRating, 0.001)
}

func TestCatalog_Products_ByCategoryNameAndSlug(t *testing.T) {
	svc := newTestCatalog()

	byName := svc.Products(context.Background(), "Kitchen", pagination.DefaultParams())
	bySlug := svc.Products(context.Background(), "kitchen", pagination.DefaultParams())

	assert.Equal(t, 2, byName.TotalCount)
	assert.Equal(t, byName.Items, bySlug.Items)
	for _, p := range byName.Items {
		assert.Equal(t, "Kitchen", p.Category)
	}
}

func TestCatalog_Products_UnknownCategoryIsEmpty(t *testing.T) {
	res := newTestCatalog().Products(context.Background(), "Garden", pagination.DefaultParams())

	assert.Equal(t, 0, res.TotalCount)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestCatalog_Products_Paginates(t *testing.T) {
	params := pagination.Params{Page: 2, PerPage: 3, Offset: 3}
	res := newTestCatalog().Products(context.Background(), "All", params)

	require.Len(t, res.Items, 3)
	assert.Equal(t, 4, res.Items[0].ID)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestCatalog_Product(t *testing.T) {
	svc := newTestCatalog()

	p, err := svc.Product(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "Moon Lamp", p.Name)
	assert.Equal(t, 1, p.Summary.TotalCount)

	_, err = svc.Product(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalog_Categories(t *testing.T) {
	cats := newTestCatalog().Categories(context.Background())

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"All", "Home", "Kitchen", "Stationery", "Accessories", "Lighting"}, names)
	assert.Equal(t, CategoryView{Name: "All", Slug: "all", ProductCount: 8}, cats[0])
	assert.Equal(t, 2, cats[1].ProductCount)
}

func TestCatalog_Featured(t *testing.T) {
	featured := newTestCatalog().Featured(context.Background())

	require.Len(t, featured, domain.FeaturedCount)
	assert.Equal(t, 1, featured[0].ID)
	assert.Equal(t, 4, featured[3].ID)
}

func TestCatalog_Loaded(t *testing.T) {
	svc := NewCatalogService(nil, nil, newDisabledProducer(), newTestLogger())
	assert.False(t, svc.Loaded())
	assert.Empty(t, svc.Snapshot())

	svc.Replace([]domain.Product{})
	assert.True(t, svc.Loaded())
}

// ============================================================================
// AddReview
// ============================================================================

func TestCatalog_AddReview_Prepends(t *testing.T) {
	store := &mockReviewStore{}
	pub := &mockPublisher{}
	svc := NewCatalogService(domain.MockProducts(), store, event.NewProducer(pub, "USD", newTestLogger()), newTestLogger())
	svc.now = func() time.Time { return time.Date(2024, 5, 17, 13, 0, 0, 0, time.UTC) }

	store.On("InsertReview", mock.Anything, 1, mock.AnythingOfType("domain.Review")).Return(nil)
	pub.On("Publish", mock.Anything, event.TopicReviewCreated, mock.Anything).Return(nil)

	before := svc.Snapshot()
	review, err := svc.AddReview(context.Background(), 1, domain.ReviewInput{Author: "Mia", Rating: 2, Comment: "Flat."})
	require.NoError(t, err)

	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "2024-05-17", review.Date)

	p, err := svc.Product(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, p.Reviews, 3)
	assert.Equal(t, review.ID, p.Reviews[0].ID)
	assert.InDelta(t, 11.0/3.0, p.Summary.AverageRating, 0.001)

	assert.Len(t, before[0].Reviews, 2, "earlier snapshot must not change")
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCatalog_AddReview_DateIsUTC(t *testing.T) {
	svc := newTestCatalog()
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	svc.now = func() time.Time { return time.Date(2024, 3, 8, 3, 0, 0, 0, tokyo) }

	review, err := svc.AddReview(context.Background(), 2, domain.ReviewInput{Author: "Ren", Rating: 4, Comment: "Warm."})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-07", review.Date)
}

func TestCatalog_AddReview_Validation(t *testing.T) {
	svc := newTestCatalog()

	_, err := svc.AddReview(context.Background(), 1, domain.ReviewInput{Author: "", Rating: 7, Comment: "x"})
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "author")
	assert.Contains(t, verr.Fields(), "rating")
}

func TestCatalog_AddReview_UnknownProduct(t *testing.T) {
	svc := newTestCatalog()

	_, err := svc.AddReview(context.Background(), 404, domain.ReviewInput{Author: "A", Rating: 5, Comment: "B"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalog_AddReview_SideEffectFailuresAreNotFatal(t *testing.T) {
	store := &mockReviewStore{}
	pub := &mockPublisher{}
	svc := NewCatalogService(domain.MockProducts(), store, event.NewProducer(pub, "USD", newTestLogger()), newTestLogger())

	store.On("InsertReview", mock.Anything, 3, mock.Anything).Return(errors.New("db down"))
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := svc.AddReview(context.Background(), 3, domain.ReviewInput{Author: "A", Rating: 5, Comment: "B"})
	require.NoError(t, err)

	p, _ := svc.Product(context.Background(), 3)
	assert.Len(t, p.Reviews, 2)
}
