// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Command server runs the SocialPulse ingestion service.

Startup order:

 1. Configuration: koanf defaults, then an optional YAML file, then
    environment variables. Invalid settings abort startup.
 2. Logging: zerolog, json or console.
 3. Event store: memory, DuckDB or PostgreSQL (store.backend).
 4. Event pipeline: queue transport (gochannel or NATS JetStream), the
    dispatcher fed by the ingestion coordinator, and a watermill router
    running the rollup and stream consumers.
 5. Ingestion coordinator with the attribution resolver.
 6. Pollers, one per entry under pollers in the YAML file.
 7. HTTP API.

Everything long-lived runs under the supervisor tree. SIGINT or SIGTERM
cancels the tree; the HTTP server drains for server.shutdown_timeout, then
the pipeline and store are closed.

Environment examples:

	HTTP_PORT=8080
	STORE_BACKEND=duckdb DUCKDB_PATH=/data/events.duckdb
	QUEUE_BACKEND=nats NATS_EMBEDDED=true NATS_STORE_DIR=/data/nats
	ROLLUP_ENABLED=true ROLLUP_LEDGER_PATH=/data/ledger
	META_VERIFY_TOKEN=... META_APP_SECRET=... WEBHOOK_VERIFY_SIGNATURES=true
*/
package main
