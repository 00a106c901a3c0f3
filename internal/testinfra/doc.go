// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package testinfra starts real dependencies in Docker for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/store/...
//
// Tests call SkipIfNoDocker first so they skip cleanly on machines without a
// Docker daemon. The first run pulls postgres:16-alpine.
package testinfra
