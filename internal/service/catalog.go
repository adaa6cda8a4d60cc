package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mochico/storefront/internal/catalog"
	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/event"
	apperrors "github.com/mochico/storefront/pkg/errors"
	"github.com/mochico/storefront/pkg/logger"
	"github.com/mochico/storefront/pkg/pagination"
	"github.com/mochico/storefront/pkg/slug"
	"github.com/mochico/storefront/pkg/validator"
)

// CategoryView is a catalog category as listed in the shop sidebar.
type CategoryView struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"product_count"`
}

// CatalogService serves the shared product catalog. The product slice is
// never modified in place: every review append swaps in a new slice, so
// readers can hold on to a snapshot without locking.
type CatalogService struct {
	mu       sync.RWMutex
	products []domain.Product
	loaded   atomic.Bool

	reviews  catalog.ReviewStore
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewCatalogService creates a catalog service over products. A nil products
// slice means the catalog is still loading; see Replace. reviews may be nil,
// in which case added reviews live only in memory.
func NewCatalogService(products []domain.Product, reviews catalog.ReviewStore, producer *event.Producer, logger *slog.Logger) *CatalogService {
	s := &CatalogService{
		products: []domain.Product{},
		reviews:  reviews,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
	if products != nil {
		s.Replace(products)
	}
	return s
}

// Loaded reports whether a catalog load has completed, successfully or not.
func (s *CatalogService) Loaded() bool {
	return s.loaded.Load()
}

// Snapshot returns the current catalog. Callers must not modify it.
func (s *CatalogService) Snapshot() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// Lookup returns the product with the given id.
func (s *CatalogService) Lookup(id int) (domain.Product, bool) {
	return domain.FindProduct(s.Snapshot(), id)
}

// ResolveCategory maps a category name or slug to the category name.
// An empty value means "All".
func (s *CatalogService) ResolveCategory(value string) (string, bool) {
	if value == "" {
		return domain.AllCategories, true
	}
	products := s.Snapshot()
	if domain.IsKnownCategory(products, value) {
		return value, true
	}
	for _, c := range domain.Categories(products) {
		if slug.Generate(c) == value {
			return c, true
		}
	}
	return "", false
}

// Products lists one page of the products visible under category. An
// unknown category is a valid filter with no matches.
func (s *CatalogService) Products(_ context.Context, category string, params pagination.Params) pagination.Result[domain.ProductView] {
	name, ok := s.ResolveCategory(category)
	if !ok {
		return pagination.Paginate([]domain.ProductView{}, params)
	}
	return pagination.Paginate(views(domain.FilterByCategory(s.Snapshot(), name)), params)
}

// Product returns a single product with its review summary.
func (s *CatalogService) Product(_ context.Context, id int) (domain.ProductView, error) {
	p, ok := s.Lookup(id)
	if !ok {
		return domain.ProductView{}, apperrors.NotFound("product", strconv.Itoa(id))
	}
	return domain.NewProductView(p), nil
}

// Categories lists "All" followed by each category in first-seen order.
func (s *CatalogService) Categories(_ context.Context) []CategoryView {
	products := s.Snapshot()
	names := domain.Categories(products)

	out := make([]CategoryView, 0, len(names))
	for _, name := range names {
		out = append(out, CategoryView{
			Name:         name,
			Slug:         slug.Generate(name),
			ProductCount: len(domain.FilterByCategory(products, name)),
		})
	}
	return out
}

// Featured returns the products shown on the home view.
func (s *CatalogService) Featured(_ context.Context) []domain.ProductView {
	return views(domain.Featured(s.Snapshot(), domain.FeaturedCount))
}

// AddReview validates input and prepends a new review to the product.
func (s *CatalogService) AddReview(ctx context.Context, productID int, input domain.ReviewInput) (domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return domain.Review{}, err
	}
	review := domain.NewReview(input, s.now().UTC())

	s.mu.Lock()
	next, ok := domain.AddReview(s.products, productID, review)
	if ok {
		s.products = next
	}
	s.mu.Unlock()

	if !ok {
		return domain.Review{}, apperrors.NotFound("product", strconv.Itoa(productID))
	}
	ReviewsCreated.Inc()

	log := logger.WithContext(ctx, s.logger)
	if s.reviews != nil {
		if err := s.reviews.InsertReview(ctx, productID, review); err != nil {
			log.ErrorContext(ctx, "failed to persist review",
				slog.Int("product_id", productID),
				slog.String("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := s.producer.PublishReviewCreated(ctx, productID, review); err != nil {
		log.WarnContext(ctx, "failed to publish review.created event",
			slog.Int("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	log.InfoContext(ctx, "review added",
		slog.Int("product_id", productID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// Replace swaps in a freshly loaded catalog and marks the service loaded.
func (s *CatalogService) Replace(products []domain.Product) {
	if products == nil {
		products = []domain.Product{}
	}
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	s.loaded.Store(true)
	CatalogProducts.Set(float64(len(products)))
}

func views(products []domain.Product) []domain.ProductView {
	out := make([]domain.ProductView, len(products))
	for i, p := range products {
		out[i] = domain.NewProductView(p)
	}
	return out
}

