package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Evaluation metrics
	EvaluationsTotal          *prometheus.CounterVec
	EvaluationDurationSeconds *prometheus.HistogramVec
	QualifyingMatches         prometheus.Histogram
	APSScore                  prometheus.Histogram
	NSCPassLevelsTotal        *prometheus.CounterVec
	UnrecognizedSubjectsTotal prometheus.Counter

	// Catalog metrics
	CatalogInstitutions          *prometheus.GaugeVec
	CatalogPrograms              *prometheus.GaugeVec
	CatalogReloadsTotal          *prometheus.CounterVec
	CatalogReloadDurationSeconds prometheus.Histogram
	CatalogSyncsTotal            *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterClients prometheus.Gauge

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec

	// Logging metrics
	LogRecordsDropped *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Evaluation metrics
		EvaluationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_evaluations_total",
				Help: "Total number of engine operations by operation and status",
			},
			[]string{"operation", "status"}, // status: success, invalid, error
		),

		EvaluationDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "elig_evaluation_duration_seconds",
				Help:    "Engine operation duration in seconds by operation",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}, // CPU-bound work
			},
			[]string{"operation"}, // operation: eligibility, aps, nsc, availability, normalize, search
		),

		QualifyingMatches: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "elig_qualifying_matches",
				Help:    "Number of qualifying programmes per eligibility evaluation",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),

		APSScore: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "elig_aps_score",
				Help:    "Distribution of computed admission point scores",
				Buckets: prometheus.LinearBuckets(0, 6, 10), // 0 to 54
			},
		),

		NSCPassLevelsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_nsc_pass_levels_total",
				Help: "Total NSC evaluations by resulting pass level",
			},
			[]string{"level"}, // level: none, higher_certificate, diploma, bachelor
		),

		UnrecognizedSubjectsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "elig_unrecognized_subjects_total",
				Help: "Total subject names that did not resolve to a canonical subject",
			},
		),

		// Catalog metrics
		CatalogInstitutions: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "elig_catalog_institutions",
				Help: "Institutions in the loaded catalog by kind",
			},
			[]string{"kind"}, // kind: university, college
		),

		CatalogPrograms: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "elig_catalog_programs",
				Help: "Programmes in the loaded catalog by institution kind",
			},
			[]string{"kind"},
		),

		CatalogReloadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_catalog_reloads_total",
				Help: "Total catalog reloads by status",
			},
			[]string{"status"}, // status: success, error
		),

		CatalogReloadDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "elig_catalog_reload_duration_seconds",
				Help:    "Catalog reload duration including index rebuild",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 20},
			},
		),

		CatalogSyncsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_catalog_syncs_total",
				Help: "Total remote catalog sync checks by result",
			},
			[]string{"result"}, // result: updated, unchanged, missing, error
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: bad_request, unavailable, internal
		),

		// Rate limiter metrics
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: client
		),

		RateLimiterClients: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "elig_rate_limiter_clients",
				Help: "Clients with an active rate limit bucket",
			},
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that waited instead of executing)",
			},
			[]string{"module"}, // module: catalog
		),

		// Logging metrics
		LogRecordsDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "elig_log_records_dropped_total",
				Help: "Log records discarded because the remote shipping queue was full",
			},
			[]string{"sink"}, // sink: betterstack
		),
	}

	return m
}

// RecordEvaluation records an engine operation with status
func (m *Metrics) RecordEvaluation(operation, status string, duration float64) {
	m.EvaluationsTotal.WithLabelValues(operation, status).Inc()
	m.EvaluationDurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordReport records the outcome of a full eligibility evaluation
func (m *Metrics) RecordReport(aps, qualifying int, passLevel string, unrecognized int) {
	m.APSScore.Observe(float64(aps))
	m.QualifyingMatches.Observe(float64(qualifying))
	m.NSCPassLevelsTotal.WithLabelValues(passLevel).Inc()
	if unrecognized > 0 {
		m.UnrecognizedSubjectsTotal.Add(float64(unrecognized))
	}
}

// RecordNSC records a standalone NSC evaluation
func (m *Metrics) RecordNSC(passLevel string) {
	m.NSCPassLevelsTotal.WithLabelValues(passLevel).Inc()
}

// SetCatalogSize records the size of the loaded catalog
func (m *Metrics) SetCatalogSize(kind string, institutions, programs int) {
	m.CatalogInstitutions.WithLabelValues(kind).Set(float64(institutions))
	m.CatalogPrograms.WithLabelValues(kind).Set(float64(programs))
}

// RecordCatalogReload records a catalog reload with status
func (m *Metrics) RecordCatalogReload(status string, duration float64) {
	m.CatalogReloadsTotal.WithLabelValues(status).Inc()
	m.CatalogReloadDurationSeconds.Observe(duration)
}

// RecordCatalogSync records the result of one remote catalog check
func (m *Metrics) RecordCatalogSync(result string) {
	m.CatalogSyncsTotal.WithLabelValues(result).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterClients records the number of tracked clients
func (m *Metrics) SetRateLimiterClients(count int) {
	m.RateLimiterClients.Set(float64(count))
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(module string) {
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}

// RecordLogDrop records a log record the remote sink never received
func (m *Metrics) RecordLogDrop(sink string) {
	m.LogRecordsDropped.WithLabelValues(sink).Inc()
}
