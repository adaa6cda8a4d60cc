package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mochico/storefront/internal/service"
	"github.com/mochico/storefront/pkg/health"
	"github.com/mochico/storefront/pkg/middleware"
)

const (
	catalogCacheSeconds = 60
	maxRequestBodyBytes = 64 << 10
)

// RouterConfig carries the HTTP-layer settings.
type RouterConfig struct {
	ServiceName string
	Currency    string
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
}

// Services bundles the application services exposed over HTTP.
type Services struct {
	Catalog  *service.CatalogService
	Sessions *service.SessionService
	Checkout *service.CheckoutService
	Chat     *service.ChatService
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	svcs Services,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware. Session must run before Tracing so spans carry the
	// session id.
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Session())
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	catalogHandler := NewCatalogHandler(svcs.Catalog, logger)
	sessionHandler := NewSessionHandler(svcs.Sessions, svcs.Checkout, svcs.Chat, cfg.Currency, logger)
	chatHandler := NewChatHandler(svcs.Chat, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(MaxBodySize(maxRequestBodyBytes))

		r.Route("/catalog", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.CacheControl(catalogCacheSeconds))
				r.Get("/products", catalogHandler.ListProducts)
				r.Get("/products/{id}", catalogHandler.GetProduct)
				r.Get("/categories", catalogHandler.ListCategories)
				r.Get("/featured", catalogHandler.ListFeatured)
			})
			r.Post("/products/{id}/reviews", catalogHandler.AddReview)
		})

		r.Route("/session", func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Get("/", sessionHandler.GetSession)
			r.Delete("/", sessionHandler.DeleteSession)
			r.Put("/view", sessionHandler.SetView)
			r.Put("/category", sessionHandler.SelectCategory)
			r.Put("/product", sessionHandler.OpenProduct)
			r.Delete("/product", sessionHandler.CloseProduct)
			r.Put("/cart/open", sessionHandler.OpenCart)
			r.Delete("/cart/open", sessionHandler.CloseCart)
			r.Get("/cart", sessionHandler.GetCart)
			r.Post("/cart/items", sessionHandler.AddCartItem)
			r.Patch("/cart/items/{productId}", sessionHandler.UpdateCartItem)
			r.Post("/checkout", sessionHandler.SubmitCheckout)
			r.Delete("/checkout", sessionHandler.ResetCheckout)
			r.Get("/chat", chatHandler.GetTranscript)
			r.Post("/chat", chatHandler.SendMessage)
		})
	})

	return r
}
