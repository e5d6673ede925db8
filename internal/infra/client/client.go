// Package client implements the dashboard sources over HTTP. Every call goes
// through a bulkhead, a circuit breaker and retry with backoff.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("client")

// endpoint is the resilient transport shared by the source clients.
type endpoint struct {
	source     domain.SourceName
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// getJSON fetches path and decodes the body into out. 404s, other client
// errors and undecodable bodies are not retried.
func (e *endpoint) getJSON(ctx context.Context, path string, out any) error {
	err := e.bulkhead.Do(ctx, func() error {
		_, err := e.cb.Execute(func() (any, error) {
			return nil, resilience.RetryWithBackoff(ctx, e.cfg, func() error {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+path, nil)
				if err != nil {
					return resilience.Permanent(err)
				}
				req.Header.Set("Accept", "application/json")

				resp, err := e.httpClient.Do(req)
				if err != nil {
					return err
				}
				defer resp.Body.Close()

				switch {
				case resp.StatusCode == http.StatusNotFound:
					return resilience.Permanent(&domain.ErrNotFound{Resource: string(e.source), ID: "me"})
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					return resilience.Permanent(fmt.Errorf("%s API returned status %d", e.source, resp.StatusCode))
				case resp.StatusCode != http.StatusOK:
					return fmt.Errorf("%s API returned status %d", e.source, resp.StatusCode)
				}

				if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
					return resilience.Permanent(fmt.Errorf("decode %s response: %w", e.source, err))
				}
				return nil
			})
		})
		return err
	})
	if err != nil {
		return e.sourceError(err)
	}
	return nil
}

// sourceError wraps err in the source's typed failure.
func (e *endpoint) sourceError(err error) *domain.SourceError {
	var notFound *domain.ErrNotFound
	switch {
	case resilience.IsOpen(err):
		err = &domain.ErrCircuitOpen{Service: string(e.source)}
	case errors.Is(err, context.DeadlineExceeded):
		err = &domain.ErrTimeout{Operation: "fetch " + string(e.source)}
	case errors.Is(err, context.Canceled), errors.As(err, &notFound):
	default:
		err = &domain.ErrExternalService{Service: string(e.source), Err: err}
	}
	return &domain.SourceError{Source: e.source, Err: err}
}
