package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

// BalanceClient fetches the total balance from the Accounts API.
type BalanceClient struct {
	endpoint
}

// NewBalanceClient creates a new BalanceClient.
func NewBalanceClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, cfg resilience.Config) *BalanceClient {
	return &BalanceClient{endpoint{
		source:     domain.SourceBalance,
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   bulkhead,
		cfg:        cfg,
	}}
}

// FetchTotalBalance calls GET /v1/me/balance. A missing currency defaults to
// USD; an unknown one fails the call.
func (c *BalanceClient) FetchTotalBalance(ctx context.Context) (domain.MoneyAmount, error) {
	ctx, span := tracer.Start(ctx, "BalanceClient.FetchTotalBalance")
	defer span.End()

	var body domain.MoneyAmount
	if err := c.getJSON(ctx, "/v1/me/balance", &body); err != nil {
		span.RecordError(err)
		return domain.MoneyAmount{}, err
	}

	balance, err := domain.NewMoneyAmount(body.Value, body.Currency)
	if err != nil {
		return domain.MoneyAmount{}, &domain.SourceError{Source: c.source, Err: err}
	}
	return balance, nil
}
