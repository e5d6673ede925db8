// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
)

// ProfileSource supplies the current user's display identity.
type ProfileSource interface {
	FetchProfile(ctx context.Context) (domain.UserProfile, error)
}

// BalanceSource supplies the account's current total balance.
type BalanceSource interface {
	FetchTotalBalance(ctx context.Context) (domain.MoneyAmount, error)
}

// TransactionSource supplies recent transactions, newest first.
// Implementations return at most limit rows.
type TransactionSource interface {
	FetchRecent(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// DashboardFetcher joins the three sources into a single dashboard.
type DashboardFetcher interface {
	FetchDashboard(ctx context.Context, limit int) (*domain.Dashboard, error)
}

// ProfileGetter returns the user profile for the profile screen.
type ProfileGetter interface {
	GetUserProfile(ctx context.Context) (domain.UserProfile, error)
}

// ProfileRefresher drops the cached profile so the next read hits the source.
type ProfileRefresher interface {
	InvalidateProfile()
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
