// Package service provides the business logic layer (use cases).
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service")

// DashboardService joins profile, balance and recent transactions into one
// Dashboard. It performs no retries and no partial degradation: either every
// source succeeds or the whole call fails with *domain.AggregationError.
type DashboardService struct {
	profiles     port.ProfileSource
	balances     port.BalanceSource
	transactions port.TransactionSource
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewDashboardService creates the aggregator with all dependencies injected.
func NewDashboardService(
	profiles port.ProfileSource,
	balances port.BalanceSource,
	transactions port.TransactionSource,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		profiles:     profiles,
		balances:     balances,
		transactions: transactions,
		metrics:      metrics,
		logger:       logger,
	}
}

// FetchDashboard fetches the three pieces concurrently and returns only after
// all of them have settled.
func (s *DashboardService) FetchDashboard(ctx context.Context, limit int) (*domain.Dashboard, error) {
	if limit < 1 {
		return nil, &domain.ErrValidation{Field: "limit", Message: "must be a positive integer"}
	}
	// Bail out early if the caller already cancelled.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "DashboardService.FetchDashboard")
	defer span.End()
	span.SetAttributes(attribute.Int("dashboard.limit", limit))

	start := time.Now()

	var (
		profile      domain.UserProfile
		balance      domain.MoneyAmount
		transactions []domain.Transaction
	)
	// One slot per source; each goroutine writes only its own.
	failures := make([]*domain.SourceError, 3)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.profiles.FetchProfile(gCtx)
		if err != nil {
			failures[0] = asSourceError(domain.SourceProfile, err)
			return failures[0]
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		b, err := s.balances.FetchTotalBalance(gCtx)
		if err != nil {
			failures[1] = asSourceError(domain.SourceBalance, err)
			return failures[1]
		}
		balance = b
		return nil
	})

	g.Go(func() error {
		txs, err := s.transactions.FetchRecent(gCtx, limit)
		if err == nil {
			err = checkTransactions(txs, limit)
		}
		if err != nil {
			failures[2] = asSourceError(domain.SourceTransactions, err)
			return failures[2]
		}
		transactions = append(make([]domain.Transaction, 0, len(txs)), txs...)
		return nil
	})

	if err := g.Wait(); err != nil {
		aggErr := s.aggregationError(ctx, failures)
		span.RecordError(aggErr)
		span.SetStatus(codes.Error, "aggregation failed")
		s.metrics.RecordDashboard(observability.OutcomeFailure, time.Since(start))
		return nil, aggErr
	}

	s.metrics.RecordDashboard(observability.OutcomeSuccess, time.Since(start))
	s.logger.Debug("dashboard aggregated",
		zap.Int("transactions", len(transactions)),
		zap.Duration("latency", time.Since(start)),
	)

	return &domain.Dashboard{
		UserProfile:        profile,
		TotalBalance:       balance,
		RecentTransactions: transactions,
	}, nil
}

// aggregationError keeps the failures that caused the join to fail. A sibling
// that only saw the group context cancelled after another source failed is not
// reported, unless the caller's own context was cancelled.
func (s *DashboardService) aggregationError(ctx context.Context, failures []*domain.SourceError) *domain.AggregationError {
	var reported, cancelled []*domain.SourceError
	for _, f := range failures {
		if f == nil {
			continue
		}
		if ctx.Err() == nil && errors.Is(f.Err, context.Canceled) {
			cancelled = append(cancelled, f)
			continue
		}
		reported = append(reported, f)
	}
	if len(reported) == 0 {
		reported = cancelled
	}

	for _, f := range reported {
		s.logger.Error("dashboard source failed",
			zap.String("source", string(f.Source)),
			zap.Error(f.Err),
		)
		s.metrics.IncrSourceError(f.Source)
	}
	return &domain.AggregationError{Failures: reported}
}

func asSourceError(source domain.SourceName, err error) *domain.SourceError {
	var srcErr *domain.SourceError
	if errors.As(err, &srcErr) && srcErr.Source == source {
		return srcErr
	}
	return &domain.SourceError{Source: source, Err: err}
}

// checkTransactions enforces the source contract: at most limit rows, each valid.
func checkTransactions(txs []domain.Transaction, limit int) error {
	if len(txs) > limit {
		return &domain.ErrValidation{
			Field:   "transactions",
			Message: fmt.Sprintf("source returned %d rows for limit %d", len(txs), limit),
		}
	}
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return nil
}
