package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/service"
	"github.com/mochico/storefront/pkg/httputil"
	"github.com/mochico/storefront/pkg/pagination"
	"github.com/mochico/storefront/pkg/validator"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/catalog/products?category=&page=&per_page=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	httputil.WriteData(w, h.service.Products(r.Context(), category, pagination.FromRequest(r)))
}

// GetProduct handles GET /api/v1/catalog/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.Product(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, product)
}

// ListCategories handles GET /api/v1/catalog/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.Categories(r.Context()))
}

// ListFeatured handles GET /api/v1/catalog/featured
func (h *CatalogHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.Featured(r.Context()))
}

// AddReview handles POST /api/v1/catalog/products/{id}/reviews
func (h *CatalogHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req domain.ReviewInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.AddReview(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}
