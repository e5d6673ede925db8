package observability

import (
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	dashboardDuration *prometheus.HistogramVec
	aggregations      *prometheus.CounterVec
	sourceErrors      *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	presenterLoads    *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		dashboardDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pennybank_dashboard_duration_seconds",
				Help:    "Duration of dashboard aggregations by outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		aggregations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pennybank_dashboard_aggregations_total",
				Help: "Total dashboard aggregations by outcome.",
			},
			[]string{"outcome"},
		),
		sourceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pennybank_source_errors_total",
				Help: "Total errors returned by dashboard sources.",
			},
			[]string{"source"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pennybank_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pennybank_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		presenterLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pennybank_presenter_loads_total",
				Help: "Screen loads by screen and outcome (success or fallback).",
			},
			[]string{"screen", "outcome"},
		),
		sessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pennybank_sessions_active",
				Help: "Screen sessions currently held by the registry.",
			},
		),
	}
}

// RecordDashboard records the duration and outcome of one aggregation.
func (m *Metrics) RecordDashboard(outcome string, d time.Duration) {
	m.dashboardDuration.WithLabelValues(outcome).Observe(d.Seconds())
	m.aggregations.WithLabelValues(outcome).Inc()
}

// IncrSourceError increments the source error counter.
func (m *Metrics) IncrSourceError(source domain.SourceName) {
	m.sourceErrors.WithLabelValues(string(source)).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrPresenterLoad counts a finished screen load.
func (m *Metrics) IncrPresenterLoad(screen, outcome string) {
	m.presenterLoads.WithLabelValues(screen, outcome).Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	m.sessionsActive.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	m.sessionsActive.Dec()
}

// Snapshot returns the current aggregation figures for GET /v1/metrics/dashboard.
func (m *Metrics) Snapshot() *domain.DashboardMetrics {
	succeeded := getCounterValue(m.aggregations, OutcomeSuccess)
	failed := getCounterValue(m.aggregations, OutcomeFailure)
	hits := getCounterValue(m.cacheHits, "profile")
	misses := getCounterValue(m.cacheMisses, "profile")

	total := succeeded + failed
	failureRate := float64(0)
	if total > 0 {
		failureRate = failed / total
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	sourceErrors := make(map[string]int64, 3)
	for _, s := range []domain.SourceName{domain.SourceProfile, domain.SourceBalance, domain.SourceTransactions} {
		sourceErrors[string(s)] = int64(getCounterValue(m.sourceErrors, string(s)))
	}

	return &domain.DashboardMetrics{
		TotalAggregations:  int64(total),
		FailedAggregations: int64(failed),
		FailureRate:        failureRate,
		SourceErrors:       sourceErrors,
		CacheHitRate:       cacheHitRate,
		ActiveSessions:     int64(getGaugeValue(m.sessionsActive)),
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil && m.Gauge.Value != nil {
		return *m.Gauge.Value
	}
	return 0
}
