// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion Metrics
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_events_ingested_total",
			Help: "Total number of events persisted",
		},
		[]string{"platform", "source"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_events_rejected_total",
			Help: "Total number of events rejected before or during persistence",
		},
		[]string{"platform", "reason"}, // validation, normalization, duplicate, storage
	)

	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialpulse_ingest_duration_seconds",
			Help:    "Duration of a single event ingestion in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"platform"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "socialpulse_ingest_batch_size",
			Help:    "Number of events submitted per batch",
			Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000},
		},
	)

	// Attribution Metrics
	AttributionLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_attribution_lookups_total",
			Help: "Owner attribution lookups by outcome",
		},
		[]string{"result"}, // hit, miss, cached, timeout, error, breaker_open
	)

	// Webhook Metrics
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_webhook_requests_total",
			Help: "Inbound webhook requests by platform and verifier state",
		},
		[]string{"platform", "state", "status_code"},
	)

	WebhookItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_webhook_items_total",
			Help: "Webhook notification items by outcome",
		},
		[]string{"platform", "result"}, // accepted, rejected, duplicate
	)

	// Poller Metrics
	PollerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_poller_runs_total",
			Help: "Platform API poll cycles by outcome",
		},
		[]string{"platform", "result"},
	)

	PollerLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "socialpulse_poller_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll",
		},
		[]string{"platform"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Messaging Metrics
	QueueMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_queue_published_total",
			Help: "Messages published to the event queue",
		},
		[]string{"topic"},
	)

	QueuePublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_queue_publish_failures_total",
			Help: "Failed publishes to the event queue",
		},
		[]string{"topic"},
	)

	DispatchDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socialpulse_dispatch_dropped_total",
			Help: "Ingested notifications dropped because the dispatch buffer was full",
		},
	)

	DispatchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "socialpulse_dispatch_queue_depth",
			Help: "Notifications waiting in the dispatch buffer",
		},
	)

	QueueMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socialpulse_queue_consumed_total",
			Help: "Messages handled by queue consumers",
		},
		[]string{"handler", "result"}, // applied, skipped, duplicate, failed
	)

	QueueProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "socialpulse_queue_processing_duration_seconds",
			Help:    "Duration of queue message handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)
)

// RecordIngested records a persisted event.
func RecordIngested(platform, source string, duration time.Duration) {
	EventsIngested.WithLabelValues(platform, source).Inc()
	IngestDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// RecordRejected records an event that did not make it into the store.
func RecordRejected(platform, reason string) {
	if platform == "" {
		platform = "unknown"
	}
	EventsRejected.WithLabelValues(platform, reason).Inc()
}

// RecordBatch records the size of an accepted batch.
func RecordBatch(size int) {
	BatchSize.Observe(float64(size))
}

// RecordAttribution records one owner lookup outcome.
func RecordAttribution(result string) {
	AttributionLookups.WithLabelValues(result).Inc()
}

// RecordWebhookRequest records an inbound webhook call.
func RecordWebhookRequest(platform, state, statusCode string) {
	WebhookRequests.WithLabelValues(platform, state, statusCode).Inc()
}

// RecordWebhookItem records the outcome of one notification item.
func RecordWebhookItem(platform, result string) {
	WebhookItems.WithLabelValues(platform, result).Inc()
}

// RecordPoll records a poll cycle.
func RecordPoll(platform string, err error) {
	if err != nil {
		PollerRuns.WithLabelValues(platform, "error").Inc()
		return
	}
	PollerRuns.WithLabelValues(platform, "success").Inc()
	PollerLastSuccess.WithLabelValues(platform).Set(float64(time.Now().Unix()))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPublish records a publish attempt.
func RecordPublish(topic string, err error) {
	if err != nil {
		QueuePublishFailures.WithLabelValues(topic).Inc()
		return
	}
	QueueMessagesPublished.WithLabelValues(topic).Inc()
}

// RecordDispatchDropped records a notification lost to a full buffer.
func RecordDispatchDropped() {
	DispatchDropped.Inc()
}

// SetDispatchQueueDepth reports the current buffer occupancy.
func SetDispatchQueueDepth(n int) {
	DispatchQueueDepth.Set(float64(n))
}

// RecordConsumed records a consumer outcome and how long it took.
func RecordConsumed(handler, result string, duration time.Duration) {
	QueueMessagesConsumed.WithLabelValues(handler, result).Inc()
	QueueProcessingDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordCircuitBreakerTransition records a state change. States are the
// gobreaker names: "closed", "half-open", "open".
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordCache records a cache lookup.
func RecordCache(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
		return
	}
	CacheMisses.WithLabelValues(cacheType).Inc()
}
