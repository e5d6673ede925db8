package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/config"
	"github.com/boddenberg/pennybank-bfa-go/internal/handler"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/cache"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/client"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/fixture"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/postgres"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"
	"github.com/boddenberg/pennybank-bfa-go/internal/presenter"
	"github.com/boddenberg/pennybank-bfa-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// sources bundles the three dashboard inputs of one backend.
type sources struct {
	profiles     port.ProfileSource
	balances     port.BalanceSource
	transactions port.TransactionSource
	close        func()
}

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("source_backend", cfg.SourceBackend),
		zap.String("locale", cfg.Locale),
		zap.String("time_zone", cfg.TimeZone.String()),
		zap.Int("transaction_limit", cfg.TransactionLimit),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	ctx := context.Background()

	// --- Tracing ---
	shutdown, err := observability.InitTracer(ctx, cfg.TracingEnabled, cfg.OTLPEndpoint, observability.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Sources ---
	src, err := newSources(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up sources", zap.String("backend", cfg.SourceBackend), zap.Error(err))
	}
	defer src.close()

	// --- Services ---
	dashboardSvc := service.NewDashboardService(src.profiles, src.balances, src.transactions, metrics, logger)
	profileSvc := service.NewProfileService(src.profiles, cache.New[any](cfg.CacheTTL), metrics, logger)

	// --- Presenters ---
	formatter, err := presenter.NewFormatter(cfg.Locale, cfg.TimeZone)
	if err != nil {
		logger.Fatal("invalid locale", zap.String("locale", cfg.Locale), zap.Error(err))
	}
	if got := formatter.Locale().String(); got != cfg.Locale {
		logger.Warn("locale not supported, using closest match", zap.String("requested", cfg.Locale), zap.String("using", got))
	}
	sessions := presenter.NewRegistry(dashboardSvc, profileSvc, formatter, cfg.TransactionLimit, cfg.SessionTTL, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Dashboard:        dashboardSvc,
		Profiles:         profileSvc,
		ProfileCache:     profileSvc,
		Sessions:         sessions,
		TransactionLimit: cfg.TransactionLimit,
	}, rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst), metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newSources(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sources, error) {
	switch cfg.SourceBackend {
	case config.BackendHTTP:
		logger.Info("using HTTP API clients as data backend",
			zap.String("profile_api", cfg.ProfileAPIURL),
			zap.String("balance_api", cfg.BalanceAPIURL),
			zap.String("transactions_api", cfg.TransactionsAPIURL),
		)
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)
		return &sources{
			profiles: client.NewProfileClient(httpClient, cfg.ProfileAPIURL,
				resilience.NewCircuitBreaker("profile-api", logger), bulkhead, resilienceCfg),
			balances: client.NewBalanceClient(httpClient, cfg.BalanceAPIURL,
				resilience.NewCircuitBreaker("balance-api", logger), bulkhead, resilienceCfg),
			transactions: client.NewTransactionsClient(httpClient, cfg.TransactionsAPIURL,
				resilience.NewCircuitBreaker("transactions-api", logger), bulkhead, resilienceCfg),
			close: func() {},
		}, nil

	case config.BackendSupabase:
		logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))
		sb := supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase", logger),
			resilience.Config{MaxRetries: cfg.MaxRetries, InitialBackoff: cfg.InitialBackoff, MaxConcurrency: cfg.MaxConcurrency},
			logger,
		)
		return &sources{profiles: sb, balances: sb, transactions: sb, close: func() {}}, nil

	case config.BackendPostgres:
		logger.Info("using PostgreSQL as data backend")
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, int32(cfg.MaxConcurrency))
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool)
		return &sources{profiles: store, balances: store, transactions: store, close: pool.Close}, nil

	default:
		logger.Info("using fixture data backend", zap.String("path", cfg.FixturePath))
		src, err := fixture.Load(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		return &sources{profiles: src, balances: src, transactions: src, close: func() {}}, nil
	}
}
