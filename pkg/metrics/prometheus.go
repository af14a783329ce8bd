// Package metrics provides Prometheus metrics for the team balancing service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Outcome labels for generation runs.
const (
	OutcomeOK            = "ok"
	OutcomeInvalidConfig = "invalid_config"
	OutcomeError         = "error"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Engine metrics
	generations        *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	playersAssigned    prometheus.Counter
	playersUnassigned  prometheus.Counter
	nearMisses         *prometheus.CounterVec
	conflicts          *prometheus.CounterVec
	avoidViolations    prometheus.Counter
	dissolvedTeams     prometheus.Counter
	integrityIssues    *prometheus.CounterVec
	teamSkillSpread    prometheus.Gauge

	// Run store
	runStoreSize prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager with opts on a fresh registry. Call it once
// at startup, before handlers capture GetRegistry.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry = reg
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "teambalance",
		subsystem:        "engine",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.generations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "generations_total",
		Help:        "Total number of team generation runs by mode and outcome",
		ConstLabels: labels,
	}, []string{"mode", "outcome"})

	m.generationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "generation_duration_milliseconds",
		Help:        "Time spent generating teams in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"mode"})

	m.playersAssigned = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players_assigned_total",
		Help:        "Total number of players placed on a team",
		ConstLabels: labels,
	})

	m.playersUnassigned = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players_unassigned_total",
		Help:        "Total number of players left without a team",
		ConstLabels: labels,
	})

	m.nearMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "near_misses_total",
		Help:        "Total number of groups that could not be kept intact, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.conflicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "conflicts_total",
		Help:        "Total number of reported request conflicts, by type",
		ConstLabels: labels,
	}, []string{"type"})

	m.avoidViolations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "avoid_violations_total",
		Help:        "Total number of avoid pairs that ended up on one team",
		ConstLabels: labels,
	})

	m.dissolvedTeams = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dissolved_teams_total",
		Help:        "Total number of teams dissolved for missing a gender floor",
		ConstLabels: labels,
	})

	m.integrityIssues = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "integrity_issues_total",
		Help:        "Total number of dropped invalid references, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.teamSkillSpread = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_skill_spread",
		Help:        "Difference between the strongest and weakest team average in the last run",
		ConstLabels: labels,
	})

	m.runStoreSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "run_store_size",
		Help:        "Number of runs currently held in the run store",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "errors_total",
		Help:        "Total number of error responses by endpoint",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap memory in use",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of running goroutines",
		ConstLabels: labels,
	})
}

// Run is the summary of one generation recorded by RecordRun.
type Run struct {
	Mode            string
	Duration        time.Duration
	Assigned        int
	Unassigned      int
	NearMisses      map[string]int
	Conflicts       map[string]int
	Issues          map[string]int
	AvoidViolations int
	DissolvedTeams  int
	SkillSpread     float64
}

// RecordRun records a successful generation.
func (m *Manager) RecordRun(r Run) {
	m.generations.WithLabelValues(r.Mode, OutcomeOK).Inc()
	m.generationDuration.WithLabelValues(r.Mode).Observe(float64(r.Duration) / float64(time.Millisecond))
	m.playersAssigned.Add(float64(r.Assigned))
	m.playersUnassigned.Add(float64(r.Unassigned))
	for reason, n := range r.NearMisses {
		m.nearMisses.WithLabelValues(reason).Add(float64(n))
	}
	for typ, n := range r.Conflicts {
		m.conflicts.WithLabelValues(typ).Add(float64(n))
	}
	for kind, n := range r.Issues {
		m.integrityIssues.WithLabelValues(kind).Add(float64(n))
	}
	m.avoidViolations.Add(float64(r.AvoidViolations))
	m.dissolvedTeams.Add(float64(r.DissolvedTeams))
	m.teamSkillSpread.Set(r.SkillSpread)
}

// RecordFailedRun records a generation that returned an error.
func (m *Manager) RecordFailedRun(mode, outcome string) {
	m.generations.WithLabelValues(mode, outcome).Inc()
}

// SampleSystem refreshes the memory and goroutine gauges.
func (m *Manager) SampleSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// RunSystemSampler samples system gauges every refresh interval until ctx is
// done.
func (m *Manager) RunSystemSampler(ctx context.Context) {
	m.SampleSystem()
	t := time.NewTicker(m.refreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.SampleSystem()
		}
	}
}

// RecordRun records a successful generation on the global manager.
func RecordRun(r Run) {
	globalManager.RecordRun(r)
}

// RecordFailedRun records a failed generation on the global manager.
func RecordFailedRun(mode, outcome string) {
	globalManager.RecordFailedRun(mode, outcome)
}

// UpdateRunStoreSize sets the number of stored runs.
func UpdateRunStoreSize(size int) {
	globalManager.runStoreSize.Set(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RunSystemSampler runs the global manager's system sampler.
func RunSystemSampler(ctx context.Context) {
	globalManager.RunSystemSampler(ctx)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
