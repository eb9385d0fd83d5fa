// Package metrics exposes Prometheus instrumentation for ingestion and queries.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Row outcomes.
const (
	RowValid    = "valid"
	RowRejected = "rejected"
	RowComment  = "comment"
)

// File and query statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics holds all prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RowsProcessed  *prometheus.CounterVec
	FilesProcessed *prometheus.CounterVec
	BytesRead      prometheus.Counter
	ParseDuration  prometheus.Histogram
	QueriesRun     *prometheus.CounterVec
	QueryMatches   prometheus.Histogram
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New creates the metrics on a dedicated registry so several instances
// (one per test, for example) never collide.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RowsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "Lines processed, by outcome",
		}, []string{"outcome"}),
		FilesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Input files processed, by status",
		}, []string{"status"}),
		BytesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes read from input files",
		}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_parse_seconds",
			Help:      "Time taken to parse one input file",
			Buckets:   prometheus.DefBuckets,
		}),
		QueriesRun: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries executed, by status",
		}, []string{"status"}),
		QueryMatches: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_matches",
			Help:      "Number of records matched per query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRow counts one processed line.
func (m *Metrics) ObserveRow(outcome string) {
	if m == nil {
		return
	}
	m.RowsProcessed.WithLabelValues(outcome).Inc()
}

// ObserveFile records one parsed file.
func (m *Metrics) ObserveFile(status string, bytes int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.FilesProcessed.WithLabelValues(status).Inc()
	m.BytesRead.Add(float64(bytes))
	m.ParseDuration.Observe(elapsed.Seconds())
}

// ObserveQuery records one executed query and its match count.
func (m *Metrics) ObserveQuery(failed bool, matches int) {
	if m == nil {
		return
	}
	if failed {
		m.QueriesRun.WithLabelValues(StatusFailed).Inc()
		return
	}
	m.QueriesRun.WithLabelValues(StatusOK).Inc()
	m.QueryMatches.Observe(float64(matches))
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
