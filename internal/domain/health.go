package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual service.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// DashboardMetrics is returned by GET /v1/metrics/dashboard.
type DashboardMetrics struct {
	TotalAggregations  int64            `json:"totalAggregations"`
	FailedAggregations int64            `json:"failedAggregations"`
	FailureRate        float64          `json:"failureRate"`
	SourceErrors       map[string]int64 `json:"sourceErrors"`
	CacheHitRate       float64          `json:"cacheHitRate"`
	ActiveSessions     int64            `json:"activeSessions"`
	Period             string           `json:"period"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
