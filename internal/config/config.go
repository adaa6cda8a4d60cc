package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/mochico/storefront/internal/catalog"
	"github.com/mochico/storefront/internal/domain"
	pkgconfig "github.com/mochico/storefront/pkg/config"
)

// Session store kinds accepted by SESSION_STORE.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"storefront"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// HTTP server
	HTTPPort           int      `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// Shop
	Currency string `env:"SHOP_CURRENCY" envDefault:"USD"`

	// Catalog
	CatalogSource      string        `env:"CATALOG_SOURCE" envDefault:"memory"`
	CatalogMemoryDelay time.Duration `env:"CATALOG_MEMORY_DELAY" envDefault:"800ms"`
	CatalogFile        string        `env:"CATALOG_FILE"`

	// Printify
	PrintifyBaseURL string        `env:"PRINTIFY_BASE_URL" envDefault:"https://api.printify.com/v1"`
	PrintifyToken   string        `env:"PRINTIFY_API_TOKEN"`
	PrintifyShopID  string        `env:"PRINTIFY_SHOP_ID"`
	PrintifyTimeout time.Duration `env:"PRINTIFY_TIMEOUT" envDefault:"15s"`

	// PostgreSQL
	DBHost               string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort               int           `env:"DB_PORT" envDefault:"5432"`
	DBUser               string        `env:"DB_USER" envDefault:"storefront"`
	DBPassword           string        `env:"DB_PASSWORD" envDefault:"storefront"`
	DBName               string        `env:"DB_NAME" envDefault:"storefront"`
	DBSSLMode            string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxConns           int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns           int32         `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMigrate            bool          `env:"DB_MIGRATE" envDefault:"true"`
	DBSlowQueryThreshold time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Sessions
	SessionStore string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka. No brokers means events are dropped and orders are only logged.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Assistant
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides reads configuration from the environment, letting the
// given variables take precedence. The operator CLI maps its flags here.
func LoadWithOverrides(overrides map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if _, err := domain.ParseCurrency(c.Currency); err != nil {
		return fmt.Errorf("SHOP_CURRENCY: %w", err)
	}

	switch c.CatalogSource {
	case catalog.KindMemory:
	case catalog.KindFile:
		if c.CatalogFile == "" {
			return fmt.Errorf("CATALOG_FILE is required when CATALOG_SOURCE=file")
		}
	case catalog.KindPrintify:
		if c.PrintifyToken == "" || c.PrintifyShopID == "" {
			return fmt.Errorf("PRINTIFY_API_TOKEN and PRINTIFY_SHOP_ID are required when CATALOG_SOURCE=printify")
		}
	case catalog.KindPostgres:
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource)
	}

	if !slices.Contains([]string{SessionStoreMemory, SessionStoreRedis}, c.SessionStore) {
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.CatalogMemoryDelay < 0 {
		return fmt.Errorf("CATALOG_MEMORY_DELAY must not be negative")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
