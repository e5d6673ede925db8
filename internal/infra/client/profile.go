package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

// ProfileClient fetches the current user's profile from the Profile API.
type ProfileClient struct {
	endpoint
}

// NewProfileClient creates a new ProfileClient.
func NewProfileClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, cfg resilience.Config) *ProfileClient {
	return &ProfileClient{endpoint{
		source:     domain.SourceProfile,
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   bulkhead,
		cfg:        cfg,
	}}
}

// FetchProfile calls GET /v1/me/profile.
func (c *ProfileClient) FetchProfile(ctx context.Context) (domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "ProfileClient.FetchProfile")
	defer span.End()

	var profile domain.UserProfile
	if err := c.getJSON(ctx, "/v1/me/profile", &profile); err != nil {
		span.RecordError(err)
		return domain.UserProfile{}, err
	}
	return profile, nil
}
