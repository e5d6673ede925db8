// Package supabase reads dashboard data from Supabase through its PostgREST
// API. It expects the same tables as the postgres backend.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

var (
	_ port.ProfileSource     = (*Client)(nil)
	_ port.BalanceSource     = (*Client)(nil)
	_ port.TransactionSource = (*Client)(nil)
)

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
	}
}

// doRequest executes an authenticated GET against PostgREST. Client errors
// are permanent.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		err := fmt.Errorf("supabase returned status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode < 500 {
			return nil, resilience.Permanent(err)
		}
		return nil, err
	}

	c.logger.Debug("supabase: request OK",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return body, nil
}

// query fetches path under breaker and retry and decodes the row array.
func (c *Client) query(ctx context.Context, source domain.SourceName, path string, rows any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, path)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(body, rows); err != nil {
				return resilience.Permanent(fmt.Errorf("failed to decode %s: %w", source, err))
			}
			return nil
		})
	})
	if err == nil {
		return nil
	}

	switch {
	case resilience.IsOpen(err):
		err = &domain.ErrCircuitOpen{Service: "supabase/" + string(source)}
	case errors.Is(err, context.Canceled):
	default:
		err = &domain.ErrExternalService{Service: "supabase/" + string(source), Err: err}
	}
	return &domain.SourceError{Source: source, Err: err}
}

func notFound(source domain.SourceName) *domain.SourceError {
	return &domain.SourceError{Source: source, Err: &domain.ErrNotFound{Resource: string(source), ID: "me"}}
}

// --- Profile ---

// supabaseProfile maps Supabase table columns to our domain.
type supabaseProfile struct {
	DisplayName     string `json:"display_name"`
	AccountTypeName string `json:"account_type_name"`
}

// FetchProfile reads the user_profile row.
func (c *Client) FetchProfile(ctx context.Context) (domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FetchProfile")
	defer span.End()

	var rows []supabaseProfile
	if err := c.query(ctx, domain.SourceProfile, "user_profile?select=display_name,account_type_name&limit=1", &rows); err != nil {
		return domain.UserProfile{}, err
	}
	if len(rows) == 0 {
		return domain.UserProfile{}, notFound(domain.SourceProfile)
	}
	return domain.UserProfile{DisplayName: rows[0].DisplayName, AccountTypeName: rows[0].AccountTypeName}, nil
}

// --- Balance ---

type supabaseBalance struct {
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// FetchTotalBalance reads the account_balance row.
func (c *Client) FetchTotalBalance(ctx context.Context) (domain.MoneyAmount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FetchTotalBalance")
	defer span.End()

	var rows []supabaseBalance
	if err := c.query(ctx, domain.SourceBalance, "account_balance?select=total,currency&limit=1", &rows); err != nil {
		return domain.MoneyAmount{}, err
	}
	if len(rows) == 0 {
		return domain.MoneyAmount{}, notFound(domain.SourceBalance)
	}
	m, err := domain.NewMoneyAmount(rows[0].Total, rows[0].Currency)
	if err != nil {
		return domain.MoneyAmount{}, &domain.SourceError{Source: domain.SourceBalance, Err: err}
	}
	return m, nil
}

// --- Transactions ---

// supabaseTransaction maps Supabase table columns.
type supabaseTransaction struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	OccurredAt time.Time       `json:"occurred_at"`
	Category   string          `json:"category"`
	Direction  string          `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

// FetchRecent reads the newest limit transactions.
func (c *Client) FetchRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FetchRecent")
	defer span.End()
	span.SetAttributes(attribute.Int("transactions.limit", limit))

	var rows []supabaseTransaction
	path := fmt.Sprintf("transactions?select=*&order=occurred_at.desc&limit=%d", limit)
	if err := c.query(ctx, domain.SourceTransactions, path, &rows); err != nil {
		return nil, err
	}

	transactions := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		amount, err := domain.NewMoneyAmount(r.Amount, r.Currency)
		if err != nil {
			return nil, &domain.SourceError{Source: domain.SourceTransactions, Err: fmt.Errorf("transaction %s: %w", r.ID, err)}
		}
		transactions = append(transactions, domain.Transaction{
			ID:        r.ID,
			Title:     r.Title,
			Timestamp: r.OccurredAt,
			Category:  r.Category,
			Direction: domain.Direction(r.Direction),
			Amount:    amount,
		})
	}
	return transactions, nil
}
