// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package eventprocessor carries events.ingested notifications from the
ingestion coordinator to background consumers.

# Flow

	Coordinator ──Notify──▶ Dispatcher (bounded chan)
	                            │ Serve
	                            ▼
	                        Publisher (circuit breaker)
	                            │
	                            ▼
	                        Transport: gochannel | NATS JetStream
	                            │
	                            ▼
	                        Router: PoisonQueue ▸ Retry ▸ Recoverer
	                         ├─ rollup consumer
	                         └─ StreamHandler ▶ websocket hub

Notify never blocks. When the dispatcher buffer is full the notification is
dropped and counted in socialpulse_dispatch_dropped_total; the event itself
is already persisted.

# Backends

queue.backend=channel (default) uses watermill's GoChannel. Every consumer
receives every message and nothing survives a restart.

queue.backend=nats publishes to JetStream with Nats-Msg-Id set to the event
id, so a publish retried inside the two minute duplicate window is stored
once. Each consumer binds its own durable on the stream. queue.embedded
starts an in-process nats-server instead of dialing queue.nats_url.

Redelivery is expected on both backends; consumers must be idempotent.
*/
package eventprocessor
