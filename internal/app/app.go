package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mochico/storefront/internal/assistant"
	"github.com/mochico/storefront/internal/catalog"
	"github.com/mochico/storefront/internal/config"
	"github.com/mochico/storefront/internal/event"
	handler "github.com/mochico/storefront/internal/handler/http"
	"github.com/mochico/storefront/internal/order"
	"github.com/mochico/storefront/internal/repository"
	"github.com/mochico/storefront/internal/repository/memory"
	redisrepo "github.com/mochico/storefront/internal/repository/redis"
	"github.com/mochico/storefront/internal/service"
	"github.com/mochico/storefront/pkg/database"
	"github.com/mochico/storefront/pkg/health"
	"github.com/mochico/storefront/pkg/httpclient"
	pkgkafka "github.com/mochico/storefront/pkg/kafka"
	"github.com/mochico/storefront/pkg/middleware"
	"github.com/mochico/storefront/pkg/tracing"
)

var errCatalogLoading = errors.New("catalog is still loading")

// chatCleanupInterval is how often idle assistant conversations are swept.
const chatCleanupInterval = time.Minute

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	source         catalog.Source
	catalog        *service.CatalogService
	chat           *service.ChatService
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// The catalog itself is loaded in the background once Run is called.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}
	healthHandler := health.NewHandler()

	// Catalog source.
	var reviews catalog.ReviewStore
	switch cfg.CatalogSource {
	case catalog.KindFile:
		a.source = catalog.NewFileSource(cfg.CatalogFile)
	case catalog.KindPrintify:
		a.source = NewPrintifySource(cfg, logger)
	case catalog.KindPostgres:
		pool, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		pg := catalog.NewPostgresSource(pool)
		a.source = pg
		reviews = pg
	default:
		a.source = catalog.NewMemorySource(cfg.CatalogMemoryDelay)
	}

	// Session store.
	var sessionRepo repository.SessionRepository
	if cfg.SessionStore == config.SessionStoreRedis {
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			a.closeResources()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		a.rdb = rdb
		sessionRepo = redisrepo.NewSessionRepository(rdb, cfg.SessionTTL)
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		sessionRepo = memory.NewSessionRepository()
	}

	// Kafka is optional. The event producer takes an untyped nil when it is
	// off so that Enabled reports false.
	var publisher event.Publisher
	if cfg.KafkaEnabled() {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = a.producer
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return a.producer.Ping(ctx)
		})
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("no kafka brokers configured, events are dropped and orders are only logged")
	}
	eventProducer := event.NewProducer(publisher, cfg.Currency, logger)

	var submitter order.Submitter
	if eventProducer.Enabled() {
		submitter = order.NewKafkaSubmitter(eventProducer, logger)
	} else {
		submitter = order.NewLogSubmitter(logger)
	}

	chatClient := assistant.NewGeminiClient(assistant.GeminiConfig{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: assistant.DefaultTemperature,
	})
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, the assistant will answer with a fallback")
	}

	// Build the dependency graph.
	a.catalog = service.NewCatalogService(nil, reviews, eventProducer, logger)
	sessions := service.NewSessionService(sessionRepo, a.catalog, eventProducer, cfg.Currency, logger)
	a.chat = service.NewChatService(chatClient, cfg.SessionTTL, logger)
	svcs := handler.Services{
		Catalog:  a.catalog,
		Sessions: sessions,
		Checkout: service.NewCheckoutService(sessions, submitter, logger),
		Chat:     a.chat,
	}

	healthHandler.RegisterCritical("catalog", func(context.Context) error {
		if !a.catalog.Loaded() {
			return errCatalogLoading
		}
		return nil
	})

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(svcs, healthHandler, logger, handler.RouterConfig{
		ServiceName: cfg.ServiceName,
		Currency:    cfg.Currency,
		CORS:        cors,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// NewPrintifySource builds the Printify catalog source behind a retrying,
// circuit-broken HTTP client.
func NewPrintifySource(cfg *config.Config, logger *slog.Logger) *catalog.PrintifySource {
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.PrintifyTimeout
	clientCfg.Headers = map[string]string{
		"Authorization": "Bearer " + cfg.PrintifyToken,
		"User-Agent":    cfg.ServiceName,
	}
	cbClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("printify"),
		logger,
	)
	logger.Info("printify catalog source configured",
		slog.String("base_url", cfg.PrintifyBaseURL),
		slog.String("shop_id", cfg.PrintifyShopID),
	)
	return catalog.NewPrintifySource(cbClient, catalog.PrintifyConfig{
		BaseURL: cfg.PrintifyBaseURL,
		ShopID:  cfg.PrintifyShopID,
	})
}

// OpenPostgres connects to the catalog database, registers pool metrics and
// applies the embedded migrations when DB_MIGRATE is set.
func OpenPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.DBHost
	pgCfg.Port = cfg.DBPort
	pgCfg.User = cfg.DBUser
	pgCfg.Password = cfg.DBPassword
	pgCfg.DBName = cfg.DBName
	pgCfg.SSLMode = cfg.DBSSLMode
	pgCfg.MaxConns = cfg.DBMaxConns
	pgCfg.MinConns = cfg.DBMinConns

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.DBHost),
		slog.Int("port", cfg.DBPort),
		slog.String("database", cfg.DBName),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, cfg.ServiceName); err != nil {
		logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
	}

	if cfg.DBMigrate {
		if err := database.RunMigrations(ctx, pool, catalog.Migrations(), logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
	}

	if cfg.DBSlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.DBSlowQueryThreshold, logger)
	}
	return pool, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// LoadCatalog loads the catalog from the configured source and publishes it
// to the catalog service. A failing source leaves an empty catalog.
func (a *App) LoadCatalog(ctx context.Context) {
	products := catalog.Load(ctx, a.source, a.logger)
	if ctx.Err() != nil {
		return
	}
	a.catalog.Replace(products)
}

// Run starts the HTTP server and the catalog loader, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.LoadCatalog(gctx)
		return nil
	})

	g.Go(func() error {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.runChatCleanup(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// runChatCleanup periodically drops idle assistant conversations.
func (a *App) runChatCleanup(ctx context.Context) {
	ticker := time.NewTicker(chatCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := a.chat.EvictIdle(); evicted > 0 {
				a.logger.Info("idle chat sessions evicted", slog.Int("evicted", evicted))
			}
		}
	}
}

// Shutdown gracefully stops all components in order: the HTTP server first,
// then the tracer, then the backing stores.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Flush spans after the drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	errs = append(errs, a.closeResources()...)

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeResources() []error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errs
}
