package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source backends.
const (
	BackendFixture  = "fixture"
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Sources
	SourceBackend      string
	FixturePath        string
	ProfileAPIURL      string
	BalanceAPIURL      string
	TransactionsAPIURL string
	DatabaseURL        string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache and sessions
	CacheTTL   time.Duration
	SessionTTL time.Duration

	// Presentation
	TransactionLimit int
	Locale           string
	TimeZone         *time.Location

	// Observability
	TracingEnabled bool
	OTLPEndpoint   string

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with defaults.
// Malformed numbers and durations fall back to their defaults; an unknown
// backend or time zone is an error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SourceBackend:      strings.ToLower(getEnv("SOURCE_BACKEND", BackendFixture)),
		FixturePath:        getEnv("FIXTURE_PATH", ""),
		ProfileAPIURL:      getEnv("PROFILE_API_URL", "http://localhost:8081"),
		BalanceAPIURL:      getEnv("BALANCE_API_URL", "http://localhost:8082"),
		TransactionsAPIURL: getEnv("TRANSACTIONS_API_URL", "http://localhost:8083"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL:   getEnvDuration("CACHE_TTL", 5*time.Minute),
		SessionTTL: getEnvDuration("SESSION_TTL", 30*time.Minute),

		TransactionLimit: getEnvInt("TRANSACTION_LIMIT", 10),
		Locale:           getEnv("LOCALE", "en-US"),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 100),
	}

	switch cfg.SourceBackend {
	case BackendFixture, BackendHTTP:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendSupabase:
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("config: SUPABASE_URL is required for the %s backend", BackendSupabase)
		}
	default:
		return nil, fmt.Errorf("config: unknown SOURCE_BACKEND %q", cfg.SourceBackend)
	}

	if cfg.TransactionLimit < 1 {
		return nil, fmt.Errorf("config: TRANSACTION_LIMIT must be positive, got %d", cfg.TransactionLimit)
	}

	loc, err := time.LoadLocation(getEnv("TIME_ZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("config: TIME_ZONE: %w", err)
	}
	cfg.TimeZone = loc

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
