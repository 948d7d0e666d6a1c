// Package metrics provides the Prometheus registry for value finder runs.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "value_finder"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of pipeline runs by profile and outcome",
	}, []string{"profile", "outcome"})
	MatchesEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_evaluated_total",
		Help:      "Total number of matches evaluated",
	})
	MatchesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_skipped_total",
		Help:      "Total number of matches skipped by reason",
	}, []string{"reason"})
	QuotesRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_rejected_total",
		Help:      "Total number of odds quotes rejected by filter",
	}, []string{"reason"})
	ValueBetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "value_bets_total",
		Help:      "Total number of value bets reported by market",
	}, []string{"market"})
	SourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_requests_total",
		Help:      "Total number of upstream data source requests",
	}, []string{"source", "outcome"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP circuit breaker trips",
	})
)

// Gauge metrics
var (
	UnmappedTeams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unmapped_teams",
		Help:      "Team names without a canonical alias in the last run",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed run",
	})
)

// Histogram metrics
var (
	ValueBetEdge = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "value_bet_edge",
		Help:      "Edge of reported value bets",
		Buckets:   []float64{0.02, 0.03, 0.05, 0.075, 0.1, 0.15, 0.2, 0.3},
	}, []string{"market"})
	ValueBetConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "value_bet_confidence",
		Help:      "Confidence of reported value bets",
		Buckets:   []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
	})
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of pipeline runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RunsTotal)
		registry.MustRegister(MatchesEvaluatedTotal)
		registry.MustRegister(MatchesSkippedTotal)
		registry.MustRegister(QuotesRejectedTotal)
		registry.MustRegister(ValueBetsTotal)
		registry.MustRegister(SourceRequestsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(UnmappedTeams)
		registry.MustRegister(LastRunTimestamp)

		registry.MustRegister(ValueBetEdge)
		registry.MustRegister(ValueBetConfidence)
		registry.MustRegister(RunDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
// One-shot runs use this instead of serving /metrics.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, GetRegistry())
}

// RecordRun records a finished run.
func RecordRun(profile, outcome string, durationSeconds float64, finishedUnix float64) {
	RunsTotal.WithLabelValues(profile, outcome).Inc()
	RunDuration.Observe(durationSeconds)
	LastRunTimestamp.Set(finishedUnix)
}

// RecordMatchEvaluated records a match that reached the detector.
func RecordMatchEvaluated() {
	MatchesEvaluatedTotal.Inc()
}

// RecordMatchSkipped records a match dropped before detection.
func RecordMatchSkipped(reason string) {
	MatchesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordQuotesRejected adds rejected quote counts per reason.
func RecordQuotesRejected(rejected map[string]int) {
	for reason, n := range rejected {
		QuotesRejectedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordValueBet records one reported value bet.
func RecordValueBet(market string, edge, confidence float64) {
	ValueBetsTotal.WithLabelValues(market).Inc()
	ValueBetEdge.WithLabelValues(market).Observe(edge)
	ValueBetConfidence.Observe(confidence)
}

// RecordSourceRequest records an upstream call outcome.
func RecordSourceRequest(source, outcome string) {
	SourceRequestsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateUnmappedTeams sets the unmapped team gauge.
func UpdateUnmappedTeams(count int) {
	UnmappedTeams.Set(float64(count))
}
