// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package supervisor runs every long-lived SocialPulse component under a suture
v4 tree.

	socialpulse
	├── data-layer
	│   └── rollup-ledger-gc      (badger ledger only)
	├── messaging-layer
	│   ├── event-dispatcher
	│   ├── watermill-router      (rollup and stream consumers)
	│   ├── websocket-hub         (stream.enabled)
	│   └── poller-<platform>     (one per configured poller)
	└── api-layer
	    └── http-server

A service that returns an error is restarted with backoff once the decayed
failure count crosses FailureThreshold. Failures stay inside their layer, so
a consumer that cannot reach its store does not take the ingest API down.

Canceling the context passed to Serve stops every layer. Services that have
not returned within ShutdownTimeout are reported by UnstoppedServiceReport.
Supervisor events are logged through sutureslog, which main bridges onto
zerolog with logging.NewSlogHandler.
*/
package supervisor
