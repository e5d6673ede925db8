package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("postgres")

const (
	profileQuery = `SELECT display_name, account_type_name FROM user_profile LIMIT 1`
	balanceQuery = `SELECT total::text, currency FROM account_balance LIMIT 1`
	recentQuery  = `SELECT id::text, title, occurred_at, category, direction, amount::text, currency
		FROM transactions ORDER BY occurred_at DESC LIMIT $1`
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var (
	_ port.ProfileSource     = (*Store)(nil)
	_ port.BalanceSource     = (*Store)(nil)
	_ port.TransactionSource = (*Store)(nil)
)

// Store implements the three dashboard sources with read-only queries.
type Store struct {
	db Querier
}

// NewStore creates a Store over db.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// FetchProfile reads the single profile row.
func (s *Store) FetchProfile(ctx context.Context) (domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchProfile")
	defer span.End()

	var p domain.UserProfile
	if err := s.db.QueryRow(ctx, profileQuery).Scan(&p.DisplayName, &p.AccountTypeName); err != nil {
		return domain.UserProfile{}, queryError(domain.SourceProfile, err)
	}
	return p, nil
}

// FetchTotalBalance reads the balance row. Numerics are read as text to keep
// every digit.
func (s *Store) FetchTotalBalance(ctx context.Context) (domain.MoneyAmount, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchTotalBalance")
	defer span.End()

	var value, code string
	if err := s.db.QueryRow(ctx, balanceQuery).Scan(&value, &code); err != nil {
		return domain.MoneyAmount{}, queryError(domain.SourceBalance, err)
	}
	m, err := domain.ParseMoneyAmount(value, code)
	if err != nil {
		return domain.MoneyAmount{}, &domain.SourceError{Source: domain.SourceBalance, Err: err}
	}
	return m, nil
}

// FetchRecent reads the newest limit transactions.
func (s *Store) FetchRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchRecent")
	defer span.End()

	rows, err := s.db.Query(ctx, recentQuery, limit)
	if err != nil {
		return nil, queryError(domain.SourceTransactions, err)
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		var (
			tx               domain.Transaction
			at               time.Time
			direction        string
			amount, currency string
		)
		if err := rows.Scan(&tx.ID, &tx.Title, &at, &tx.Category, &direction, &amount, &currency); err != nil {
			return nil, queryError(domain.SourceTransactions, err)
		}
		m, err := domain.ParseMoneyAmount(amount, currency)
		if err != nil {
			return nil, &domain.SourceError{Source: domain.SourceTransactions, Err: fmt.Errorf("transaction %s: %w", tx.ID, err)}
		}
		tx.Timestamp = at
		tx.Direction = domain.Direction(direction)
		tx.Amount = m
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(domain.SourceTransactions, err)
	}
	return out, nil
}

func queryError(source domain.SourceName, err error) *domain.SourceError {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = &domain.ErrNotFound{Resource: string(source), ID: "me"}
	case errors.Is(err, context.Canceled):
	case errors.Is(err, context.DeadlineExceeded):
		err = &domain.ErrTimeout{Operation: "query " + string(source)}
	default:
		err = &domain.ErrExternalService{Service: "postgres", Err: err}
	}
	return &domain.SourceError{Source: source, Err: err}
}
