package presenter

import (
	"context"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/infra/cache"
	"github.com/boddenberg/pennybank-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pennybank-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session groups the screens of one app instance.
type Session struct {
	ID        string
	CreatedAt time.Time
	Home      *HomePresenter
	Profile   *ProfilePresenter
	Scan      *ScanSession
}

func (s *Session) close() {
	s.Home.Close()
	s.Profile.Close()
}

// Registry holds live sessions. Sessions idle for longer than the TTL are
// evicted and their screens closed.
type Registry struct {
	dashboard port.DashboardFetcher
	profiles  port.ProfileGetter
	formatter *Formatter
	limit     int
	sessions  *cache.InMemory[*Session]
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewRegistry creates a session registry.
func NewRegistry(
	dashboard port.DashboardFetcher,
	profiles port.ProfileGetter,
	formatter *Formatter,
	limit int,
	ttl time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Registry {
	r := &Registry{
		dashboard: dashboard,
		profiles:  profiles,
		formatter: formatter,
		limit:     limit,
		sessions:  cache.New[*Session](ttl),
		metrics:   metrics,
		logger:    logger,
	}
	r.sessions.OnEvicted(func(id string, s *Session) {
		r.metrics.SessionClosed()
		s.close()
		r.logger.Debug("session closed", zap.String("session_id", id))
	})
	return r
}

// Create opens a session and activates its home and profile screens.
func (r *Registry) Create(ctx context.Context) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Home:      NewHomePresenter(r.dashboard, r.formatter, r.limit, r.metrics, r.logger),
		Profile:   NewProfilePresenter(r.profiles, r.metrics, r.logger),
		Scan:      NewScanSession(),
	}
	r.sessions.Set(s.ID, s)
	r.metrics.SessionOpened()

	s.Home.Activate(ctx)
	s.Profile.Activate(ctx)

	r.logger.Debug("session opened", zap.String("session_id", s.ID))
	return s
}

// Get returns a live session and extends its lifetime.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	r.sessions.Touch(id)
	return s, true
}

// Close tears a session down. It returns false for unknown ids.
func (r *Registry) Close(id string) bool {
	if _, ok := r.sessions.Get(id); !ok {
		return false
	}
	r.sessions.Delete(id)
	return true
}

// Len returns the number of stored sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}
