package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"HTTP_ADDR", "VERSION", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT", "DEFAULT_CITY",
	"ALERT_CATALOG_PATH", "STORE_BACKEND", "SQLITE_PATH", "DATABASE_URL", "REDIS_URL", "MONGO_URI",
	"MONGO_DATABASE", "STORAGE_KEY_PREFIX", "NEWSAPI_BASE_URL", "NEWSAPI_KEY",
	"NEWSAPI_TIMEOUT", "NEWSAPI_RATE_PER_SECOND", "NEWSAPI_BURST", "READER_TIMEOUT",
	"READER_MAX_BODY_BYTES", "READER_MAX_REDIRECTS", "READER_DENY_PRIVATE_IPS",
	"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_TRUST_PROXY",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_TRACE_SAMPLE_RATIO",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

/* ───────── 1. Load ───────── */

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "New York", cfg.DefaultCity)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, DefaultSQLitePath(), cfg.Store.SQLitePath)
	assert.True(t, filepath.IsAbs(cfg.Store.SQLitePath) || cfg.Store.SQLitePath == "citypulse.db")
	assert.Equal(t, "@city_pulse_bookmarks", cfg.Store.BookmarksKey())
	assert.Equal(t, "@city_pulse_selected_city", cfg.Store.SelectedCityKey())
	assert.Equal(t, "https://newsapi.org/v2", cfg.NewsAPI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.NewsAPI.Timeout)
	assert.True(t, cfg.Reader.DenyPrivateIPs)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.RateLimit.TrustProxy)
	assert.False(t, cfg.Tracing.Export)
	assert.Equal(t, "citypulse", cfg.Tracing.ServiceName)

	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateNews(), "api key is required for news")
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STORAGE_KEY_PREFIX", "@test_")
	t.Setenv("DEFAULT_CITY", "Boston")
	t.Setenv("NEWSAPI_KEY", "k")
	t.Setenv("NEWSAPI_TIMEOUT", "5s")
	t.Setenv("NEWSAPI_RATE_PER_SECOND", "2.5")
	t.Setenv("READER_DENY_PRIVATE_IPS", "false")
	t.Setenv("READER_MAX_BODY_BYTES", "2048")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "0.25")
	t.Setenv("VERSION", "1.2.3")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "@test_bookmarks", cfg.Store.BookmarksKey())
	assert.Equal(t, "Boston", cfg.DefaultCity)
	assert.Equal(t, 5*time.Second, cfg.NewsAPI.Timeout)
	assert.Equal(t, 2.5, cfg.NewsAPI.RatePerSecond)
	assert.False(t, cfg.Reader.DenyPrivateIPs)
	assert.Equal(t, int64(2048), cfg.Reader.MaxBodySize)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.True(t, cfg.Tracing.Export)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
	assert.Equal(t, "1.2.3", cfg.Tracing.ServiceVersion)

	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateNews())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWSAPI_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_REQUESTS", "many")
	t.Setenv("READER_DENY_PRIVATE_IPS", "maybe")

	before := testutil.ToFloat64(fallbacksTotal.WithLabelValues("NEWSAPI_TIMEOUT"))
	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.NewsAPI.Timeout)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.True(t, cfg.Reader.DenyPrivateIPs)
	assert.Equal(t, before+1, testutil.ToFloat64(fallbacksTotal.WithLabelValues("NEWSAPI_TIMEOUT")))
}

/* ───────── 2. Validate ───────── */

func TestValidate_Store(t *testing.T) {
	tests := []struct {
		name    string
		store   StoreConfig
		wantErr string
	}{
		{name: "memory", store: StoreConfig{Backend: BackendMemory, KeyPrefix: "p"}},
		{name: "postgres ok", store: StoreConfig{Backend: BackendPostgres, DatabaseURL: "postgres://x", KeyPrefix: "p"}},
		{name: "postgres missing url", store: StoreConfig{Backend: BackendPostgres, KeyPrefix: "p"}, wantErr: "DATABASE_URL"},
		{name: "redis bad scheme", store: StoreConfig{Backend: BackendRedis, RedisURL: "http://x", KeyPrefix: "p"}, wantErr: "REDIS_URL"},
		{name: "mongo missing uri", store: StoreConfig{Backend: BackendMongo, MongoDatabase: "d", KeyPrefix: "p"}, wantErr: "MONGO_URI"},
		{name: "mongo ok", store: StoreConfig{Backend: BackendMongo, MongoURI: "mongodb://x", MongoDatabase: "d", KeyPrefix: "p"}},
		{name: "sqlite ok", store: StoreConfig{Backend: BackendSQLite, SQLitePath: "/tmp/c.db", KeyPrefix: "p"}},
		{name: "sqlite missing path", store: StoreConfig{Backend: BackendSQLite, KeyPrefix: "p"}, wantErr: "SQLITE_PATH"},
		{name: "unknown", store: StoreConfig{Backend: "etcd", KeyPrefix: "p"}, wantErr: "unknown STORE_BACKEND"},
		{name: "empty prefix", store: StoreConfig{Backend: BackendMemory}, wantErr: "STORAGE_KEY_PREFIX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.store.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	cfg.HTTPAddr = ""
	cfg.RateLimit.Window = 0
	cfg.DefaultCity = "  "
	cfg.Tracing.SampleRatio = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_ADDR")
	assert.Contains(t, err.Error(), "RATE_LIMIT_WINDOW")
	assert.Contains(t, err.Error(), "DEFAULT_CITY")
	assert.Contains(t, err.Error(), "OTEL_TRACE_SAMPLE_RATIO")
}

func TestDefaultSQLitePath_UnderUserConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("HOME", home)
	t.Setenv("AppData", home)

	dir, err := os.UserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "citypulse", "citypulse.db"), DefaultSQLitePath())

	clearEnv(t)
	t.Setenv("SQLITE_PATH", "/var/lib/citypulse/state.db")
	assert.Equal(t, "/var/lib/citypulse/state.db", Load().Store.SQLitePath)
}

/* ───────── 3. .env ───────── */

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DEFAULT_CITY=Chicago\nHTTP_ADDR=:7070\n"), 0o600))
	t.Setenv("HTTP_ADDR", ":6060")
	// godotenv only fills variables that are not present at all
	require.NoError(t, os.Unsetenv("DEFAULT_CITY"))

	require.NoError(t, LoadDotEnv(path))

	cfg := Load()
	assert.Equal(t, "Chicago", cfg.DefaultCity)
	assert.Equal(t, ":6060", cfg.HTTPAddr, "real environment wins over .env")
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
