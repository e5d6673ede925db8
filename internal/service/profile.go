package service

import (
	"context"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"go.uber.org/zap"
)

const profileCacheKey = "profile:current"

// ProfileService serves the profile screen from a single source.
type ProfileService struct {
	profiles port.ProfileSource
	cache    port.Cache[any]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewProfileService creates the profile use case.
func NewProfileService(profiles port.ProfileSource, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, cache: cache, metrics: metrics, logger: logger}
}

// GetUserProfile returns the cached profile or fetches and caches it.
func (s *ProfileService) GetUserProfile(ctx context.Context) (domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "ProfileService.GetUserProfile")
	defer span.End()

	if cached, ok := s.cache.Get(profileCacheKey); ok {
		if p, ok := cached.(domain.UserProfile); ok {
			s.metrics.IncrCacheHit("profile")
			return p, nil
		}
	}
	s.metrics.IncrCacheMiss("profile")

	p, err := s.profiles.FetchProfile(ctx)
	if err != nil {
		s.logger.Error("failed to fetch profile", zap.Error(err))
		s.metrics.IncrSourceError(domain.SourceProfile)
		return domain.UserProfile{}, asSourceError(domain.SourceProfile, err)
	}
	s.cache.Set(profileCacheKey, p)
	return p, nil
}

// InvalidateProfile drops the cached profile so the next call refetches it.
func (s *ProfileService) InvalidateProfile() {
	s.cache.Delete(profileCacheKey)
}
