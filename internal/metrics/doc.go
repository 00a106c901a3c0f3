// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package metrics registers the Prometheus collectors exported at /metrics.

Collectors are created with promauto on the default registry, so importing
the package is enough to expose them. Call sites use the Record* helpers
rather than touching collectors directly.

# Available Metrics

Ingestion:
  - socialpulse_events_ingested_total{platform, source}
  - socialpulse_events_rejected_total{platform, reason}
  - socialpulse_ingest_duration_seconds{platform}
  - socialpulse_ingest_batch_size
  - socialpulse_attribution_lookups_total{result}

Webhooks and pollers:
  - socialpulse_webhook_requests_total{platform, state, status_code}
  - socialpulse_webhook_items_total{platform, result}
  - socialpulse_poller_runs_total{platform, result}
  - socialpulse_poller_last_success_timestamp{platform}

Messaging:
  - socialpulse_queue_published_total{topic}
  - socialpulse_queue_publish_failures_total{topic}
  - socialpulse_dispatch_dropped_total
  - socialpulse_dispatch_queue_depth
  - socialpulse_queue_consumed_total{handler, result}
  - socialpulse_queue_processing_duration_seconds{handler}

HTTP, WebSocket, circuit breakers and caches:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total{error_type}
  - circuit_breaker_state{name}, circuit_breaker_state_transitions_total{name, from_state, to_state}
  - cache_hits_total{cache_type}, cache_misses_total{cache_type}
*/
package metrics
