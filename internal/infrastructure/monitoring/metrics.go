package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mcpview"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// View metrics
	LoadsTotal       *prometheus.CounterVec
	LoadDuration     prometheus.Histogram
	ResourcesTotal   *prometheus.CounterVec
	ResourceDuration *prometheus.HistogramVec
	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration prometheus.Histogram

	// WebSocket metrics
	SessionsActive prometheus.Gauge
	WSMessages     *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the health endpoint.
type Snapshot struct {
	TotalRequests  int64 `json:"total_requests"`
	TotalErrors    int64 `json:"total_errors"`
	ActiveSessions int64 `json:"active_sessions"`
	Renders        int64 `json:"renders"`
	FailedRenders  int64 `json:"failed_renders"`
	ToolCalls      int64 `json:"tool_calls"`
}

var latencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   latencyBuckets,
		},
		[]string{"method", "route"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"method", "route"},
	)

	m.LoadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_loads_total",
			Help:      "View renders by outcome",
		},
		[]string{"outcome"},
	)
	m.LoadDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_load_duration_seconds",
			Help:      "Time from render start to completion or discard",
			Buckets:   latencyBuckets,
		},
	)
	m.ResourcesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_requests_total",
			Help:      "Sandbox resource requests by kind and result",
		},
		[]string{"kind", "result"},
	)
	m.ResourceDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resource_request_duration_seconds",
			Help:      "Sandbox resource resolution time",
			Buckets:   latencyBuckets,
		},
		[]string{"kind"},
	)
	m.ToolCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Sandbox tool calls by result",
		},
		[]string{"result"},
	)
	m.ToolCallDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Sandbox tool call time",
			Buckets:   latencyBuckets,
		},
	)

	m.SessionsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of open view sessions",
		},
	)
	m.WSMessages = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages received by type",
		},
		[]string{"type"},
	)

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, route).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// LoadCompleted records the outcome of a view render.
func (m *Metrics) LoadCompleted(outcome string, d time.Duration) {
	m.LoadsTotal.WithLabelValues(outcome).Inc()
	m.LoadDuration.Observe(d.Seconds())

	m.mu.Lock()
	switch outcome {
	case "rendered":
		m.snapshot.Renders++
	case "failed", "error":
		m.snapshot.FailedRenders++
	}
	m.mu.Unlock()
}

// ResourceResolved records a sandbox resource request.
func (m *Metrics) ResourceResolved(kind string, ok bool, d time.Duration) {
	m.ResourcesTotal.WithLabelValues(kind, result(ok)).Inc()
	m.ResourceDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ToolCallCompleted records a sandbox tool call.
func (m *Metrics) ToolCallCompleted(ok bool, d time.Duration) {
	m.ToolCallsTotal.WithLabelValues(result(ok)).Inc()
	m.ToolCallDuration.Observe(d.Seconds())

	m.mu.Lock()
	m.snapshot.ToolCalls++
	m.mu.Unlock()
}

// SessionOpened increments the open session gauge.
func (m *Metrics) SessionOpened() {
	m.SessionsActive.Inc()
	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.mu.Unlock()
}

// SessionClosed decrements the open session gauge.
func (m *Metrics) SessionClosed() {
	m.SessionsActive.Dec()
	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.mu.Unlock()
}

// MessageReceived records a WebSocket message
func (m *Metrics) MessageReceived(msgType string) {
	m.WSMessages.WithLabelValues(msgType).Inc()
}
