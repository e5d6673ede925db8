package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// TransactionsClient fetches recent transactions from the Transactions API.
type TransactionsClient struct {
	endpoint
}

// NewTransactionsClient creates a new TransactionsClient.
func NewTransactionsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, cfg resilience.Config) *TransactionsClient {
	return &TransactionsClient{endpoint{
		source:     domain.SourceTransactions,
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   bulkhead,
		cfg:        cfg,
	}}
}

// FetchRecent calls GET /v1/me/transactions?limit=N. Rows are returned as the
// API orders them; currency codes are normalised.
func (c *TransactionsClient) FetchRecent(ctx context.Context, limit int) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "TransactionsClient.FetchRecent")
	defer span.End()
	span.SetAttributes(attribute.Int("transactions.limit", limit))

	var transactions []domain.Transaction
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/me/transactions?limit=%d", limit), &transactions); err != nil {
		span.RecordError(err)
		return nil, err
	}

	for i := range transactions {
		amount, err := domain.NewMoneyAmount(transactions[i].Amount.Value, transactions[i].Amount.Currency)
		if err != nil {
			return nil, &domain.SourceError{Source: c.source, Err: fmt.Errorf("transaction %d: %w", i, err)}
		}
		transactions[i].Amount = amount
	}
	span.SetAttributes(attribute.Int("transactions.count", len(transactions)))
	return transactions, nil
}
