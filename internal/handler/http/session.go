package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mochico/storefront/internal/domain"
	"github.com/mochico/storefront/internal/service"
	"github.com/mochico/storefront/pkg/httputil"
	"github.com/mochico/storefront/pkg/middleware"
	"github.com/mochico/storefront/pkg/validator"
)

// SessionResponse is a session together with its derived cart totals.
type SessionResponse struct {
	*domain.Session
	CartSummary domain.CartSummary `json:"cart_summary"`
}

// SessionHandler handles HTTP requests for the per-session storefront state:
// UI selections, cart and checkout.
type SessionHandler struct {
	sessions *service.SessionService
	checkout *service.CheckoutService
	chat     *service.ChatService
	currency string
	logger   *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(
	sessions *service.SessionService,
	checkout *service.CheckoutService,
	chat *service.ChatService,
	currency string,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		checkout: checkout,
		chat:     chat,
		currency: currency,
		logger:   logger,
	}
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, session *domain.Session, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, SessionResponse{Session: session, CartSummary: session.Cart.Summary(h.currency)})
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.respond(w, r, session, err)
}

// DeleteSession handles DELETE /api/v1/session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := middleware.SessionIDFromContext(r.Context())
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.chat.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// SetView handles PUT /api/v1/session/view
func (h *SessionHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req service.SetViewInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	session, err := h.sessions.SetView(r.Context(), middleware.SessionIDFromContext(r.Context()), req.View)
	h.respond(w, r, session, err)
}

// SelectCategory handles PUT /api/v1/session/category
func (h *SessionHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var req service.SelectCategoryInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	session, err := h.sessions.SelectCategory(r.Context(), middleware.SessionIDFromContext(r.Context()), req.Category)
	h.respond(w, r, session, err)
}

// OpenProduct handles PUT /api/v1/session/product
func (h *SessionHandler) OpenProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductRefInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	session, err := h.sessions.OpenProduct(r.Context(), middleware.SessionIDFromContext(r.Context()), req.ProductID)
	h.respond(w, r, session, err)
}

// CloseProduct handles DELETE /api/v1/session/product
func (h *SessionHandler) CloseProduct(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CloseProduct(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.respond(w, r, session, err)
}

// OpenCart handles PUT /api/v1/session/cart/open
func (h *SessionHandler) OpenCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.OpenCart(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.respond(w, r, session, err)
}

// CloseCart handles DELETE /api/v1/session/cart/open
func (h *SessionHandler) CloseCart(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CloseCart(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.respond(w, r, session, err)
}

// GetCart handles GET /api/v1/session/cart
func (h *SessionHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sessions.Cart(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, summary)
}

// AddCartItem handles POST /api/v1/session/cart/items
func (h *SessionHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req service.ProductRefInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	session, err := h.sessions.AddToCart(r.Context(), middleware.SessionIDFromContext(r.Context()), req.ProductID)
	h.respond(w, r, session, err)
}

// UpdateCartItem handles PATCH /api/v1/session/cart/items/{productId}
func (h *SessionHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "invalid product id"},
		})
		return
	}

	var req service.UpdateQuantityInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	session, err := h.sessions.UpdateQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), productID, req.Delta)
	h.respond(w, r, session, err)
}

// SubmitCheckout handles POST /api/v1/session/checkout
func (h *SessionHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.ShippingDetails
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	session, err := h.checkout.Submit(r.Context(), middleware.SessionIDFromContext(r.Context()), req)
	h.respond(w, r, session, err)
}

// ResetCheckout handles DELETE /api/v1/session/checkout
func (h *SessionHandler) ResetCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkout.Reset(r.Context(), middleware.SessionIDFromContext(r.Context()))
	h.respond(w, r, session, err)
}
