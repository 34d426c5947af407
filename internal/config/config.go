// Package config loads the application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"citypulse/internal/infra/db"
	"citypulse/internal/infra/newsapi"
	"citypulse/internal/infra/reader"
	"citypulse/internal/observability/tracing"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

const (
	defaultKeyPrefix   = "@city_pulse_"
	defaultDefaultCity = "New York"
)

// StoreConfig selects and configures the key-value backend.
// memory keeps nothing across restarts and is meant for tests.
type StoreConfig struct {
	Backend       string
	SQLitePath    string
	DatabaseURL   string
	Pool          db.ConnectionConfig
	RedisURL      string
	MongoURI      string
	MongoDatabase string
	KeyPrefix     string
}

// BookmarksKey is the storage key of the bookmark array.
func (s StoreConfig) BookmarksKey() string { return s.KeyPrefix + "bookmarks" }

// SelectedCityKey is the storage key of the selected city.
func (s StoreConfig) SelectedCityKey() string { return s.KeyPrefix + "selected_city" }

// RateLimitConfig bounds requests per client IP on the outbound-heavy routes.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	// TrustProxy keys clients by X-Forwarded-For / X-Real-IP instead of the peer address.
	TrustProxy bool
}

// Config is the complete application configuration.
type Config struct {
	HTTPAddr         string
	Version          string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	DefaultCity      string
	AlertCatalogPath string

	Store     StoreConfig
	NewsAPI   newsapi.Config
	Reader    reader.Config
	RateLimit RateLimitConfig
	Tracing   tracing.Config
}

// LoadDotEnv loads variables from the given files (".env" when none) without
// overriding the real environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment. Malformed numeric and
// duration values fall back to defaults; call Validate for semantic checks.
func Load() *Config {
	news := newsapi.DefaultConfig()
	news.BaseURL = GetEnvString("NEWSAPI_BASE_URL", news.BaseURL)
	news.APIKey = GetEnvString("NEWSAPI_KEY", "")
	news.Timeout = GetEnvDuration("NEWSAPI_TIMEOUT", news.Timeout)
	news.RatePerSecond = GetEnvFloat("NEWSAPI_RATE_PER_SECOND", news.RatePerSecond)
	news.Burst = GetEnvInt("NEWSAPI_BURST", news.Burst)

	rd := reader.DefaultConfig()
	rd.Timeout = GetEnvDuration("READER_TIMEOUT", rd.Timeout)
	rd.MaxBodySize = GetEnvInt64("READER_MAX_BODY_BYTES", rd.MaxBodySize)
	rd.MaxRedirects = GetEnvInt("READER_MAX_REDIRECTS", rd.MaxRedirects)
	rd.DenyPrivateIPs = GetEnvBool("READER_DENY_PRIVATE_IPS", rd.DenyPrivateIPs)

	tr := tracing.DefaultConfig()
	tr.Export = GetEnvBool("OTEL_ENABLED", false)
	tr.OTLPEndpoint = GetEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", tr.OTLPEndpoint)
	tr.SampleRatio = GetEnvFloat("OTEL_TRACE_SAMPLE_RATIO", tr.SampleRatio)

	cfg := &Config{
		HTTPAddr:         GetEnvString("HTTP_ADDR", ":8080"),
		Version:          GetEnvString("VERSION", "dev"),
		LogLevel:         GetEnvString("LOG_LEVEL", "info"),
		LogFormat:        GetEnvString("LOG_FORMAT", "json"),
		ShutdownTimeout:  GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DefaultCity:      GetEnvString("DEFAULT_CITY", defaultDefaultCity),
		AlertCatalogPath: GetEnvString("ALERT_CATALOG_PATH", ""),
		Store: StoreConfig{
			Backend:       strings.ToLower(GetEnvString("STORE_BACKEND", BackendSQLite)),
			SQLitePath:    GetEnvString("SQLITE_PATH", DefaultSQLitePath()),
			DatabaseURL:   GetEnvString("DATABASE_URL", ""),
			Pool:          db.ConnectionConfigFromEnv(),
			RedisURL:      GetEnvString("REDIS_URL", ""),
			MongoURI:      GetEnvString("MONGO_URI", ""),
			MongoDatabase: GetEnvString("MONGO_DATABASE", "citypulse"),
			KeyPrefix:     GetEnvString("STORAGE_KEY_PREFIX", defaultKeyPrefix),
		},
		NewsAPI: news,
		Reader:  rd,
		RateLimit: RateLimitConfig{
			Requests:   GetEnvInt("RATE_LIMIT_REQUESTS", 30),
			Window:     GetEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			TrustProxy: GetEnvBool("RATE_LIMIT_TRUST_PROXY", false),
		},
		Tracing: tr,
	}
	cfg.Tracing.ServiceVersion = cfg.Version
	recordLoad()
	return cfg
}

// Validate checks everything except the news API key, which only the news
// feature needs; see ValidateNews.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}
	if strings.TrimSpace(c.DefaultCity) == "" {
		errs = append(errs, errors.New("DEFAULT_CITY must not be blank"))
	}
	if err := c.Store.validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Reader.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("reader: %w", err))
	}
	if c.RateLimit.Requests < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.RateLimit.Requests))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.RateLimit.Window))
	}
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	return errors.Join(errs...)
}

// ValidateNews checks the news provider settings, including the API key.
func (c *Config) ValidateNews() error {
	if err := c.NewsAPI.Validate(); err != nil {
		return fmt.Errorf("newsapi: %w", err)
	}
	return nil
}

// DefaultSQLitePath is citypulse/citypulse.db under the user config directory,
// or the working directory when that cannot be determined.
func DefaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "citypulse.db"
	}
	return filepath.Join(dir, "citypulse", "citypulse.db")
}

func (s StoreConfig) validate() error {
	switch s.Backend {
	case BackendSQLite:
		if s.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty for the sqlite backend")
		}
	case BackendMemory:
	case BackendPostgres:
		if s.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if s.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
		if u, err := url.Parse(s.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("REDIS_URL must be a redis:// or rediss:// URL")
		}
	case BackendMongo:
		if s.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo backend")
		}
		if s.MongoDatabase == "" {
			return errors.New("MONGO_DATABASE must not be empty")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want sqlite, memory, postgres, redis or mongo)", s.Backend)
	}
	if s.KeyPrefix == "" {
		return errors.New("STORAGE_KEY_PREFIX must not be empty")
	}
	return nil
}
