// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HistoryOps counts editing operations by kind and whether they changed the document.
	HistoryOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursedraft_history_operations_total",
		Help: "Editing operations by kind and result",
	}, []string{"op", "result"})

	// HistoryLength tracks the number of snapshots in the active history.
	HistoryLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursedraft_history_length",
		Help: "Snapshots held by the active project's history",
	})

	// AutosaveFlushes counts scheduled flushes by result.
	AutosaveFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursedraft_autosave_flushes_total",
		Help: "Autosave flushes by result",
	}, []string{"result"})

	// AutosaveDuration tracks how long a flush takes.
	AutosaveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coursedraft_autosave_duration_seconds",
		Help:    "Autosave flush duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// GatewayCalls counts generation calls by operation and result.
	GatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursedraft_gateway_calls_total",
		Help: "Content generation calls by operation and result",
	}, []string{"op", "result"})

	// GatewayDuration tracks generation latency by operation.
	GatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursedraft_gateway_duration_seconds",
		Help:    "Content generation latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"op"})

	// RateLimited counts calls rejected by the generation rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coursedraft_gateway_rate_limited_total",
		Help: "Generation calls rejected by the rate limiter",
	})

	// JobsQueued tracks jobs waiting for a worker.
	JobsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coursedraft_jobs_queued",
		Help: "Generation jobs waiting for a worker",
	})

	// JobsFinished counts jobs by kind and terminal status.
	JobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursedraft_jobs_finished_total",
		Help: "Generation jobs by kind and terminal status",
	}, []string{"kind", "status"})

	// StoreOps counts durable store operations by backend, op and result.
	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursedraft_store_operations_total",
		Help: "Durable store operations by backend, operation and result",
	}, []string{"backend", "op", "result"})

	// HTTPRequests counts API requests by route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursedraft_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	// HTTPDuration tracks request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursedraft_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
