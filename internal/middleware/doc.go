// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package middleware holds the HTTP middleware mounted by the api router:
//
//   - RequestID: request and correlation ids in headers and context
//   - RequestLogger: structured access log
//   - PrometheusMetrics: per-route request metrics
//   - Compression: gzip for the read routes
//
// All of them use the chi func(http.Handler) http.Handler shape.
package middleware
