// Package metrics declares the Prometheus collectors of the risk service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "veera"

var (
	// ScoreRequests counts SOS scoring requests by final outcome
	// ("ok", "cancelled", "model_unavailable", "storage_error").
	ScoreRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "score_requests_total",
		Help:      "SOS scoring requests by outcome.",
	}, []string{"outcome"})

	// IncidentsRecorded counts persisted incidents by risk level.
	IncidentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "incidents_recorded_total",
		Help:      "Incidents persisted, labelled by risk level.",
	}, []string{"risk_level"})

	// ModelDefaultsApplied counts model answers that needed a default, by field.
	ModelDefaultsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_defaults_applied_total",
		Help:      "Model responses where a missing or unknown field was defaulted.",
	}, []string{"field"})

	// UnrecognizedRiskLevels counts labels outside the risk level enumeration.
	UnrecognizedRiskLevels = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_unrecognized_risk_levels_total",
		Help:      "Model risk_level values that did not match a known level.",
	})

	// ModelRequests counts individual HTTP attempts against the model by outcome
	// ("ok", "empty", "server_error", "client_error", "transport").
	ModelRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_requests_total",
		Help:      "HTTP attempts against the scoring model by outcome.",
	}, []string{"outcome"})

	// ModelRetries counts cold-start retries.
	ModelRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_retries_total",
		Help:      "Scoring calls retried after a cold-start symptom.",
	})

	// ModelRequestDuration observes the latency of single model attempts.
	ModelRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "model_request_duration_seconds",
		Help:      "Latency of single HTTP attempts against the scoring model.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2, 3, 5, 10},
	})

	// ModelReady is 1 while the last observation of the model was healthy.
	ModelReady = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_ready",
		Help:      "1 if the scoring model answered the last warm-up or call, else 0.",
	})

	// EventPublishFailures counts domain events that could not be published.
	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Incident events dropped because the broker rejected them.",
	})

	// HTTPRequests counts inbound HTTP requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Inbound HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes inbound request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Inbound HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
