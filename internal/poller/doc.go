// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package poller implements the API-pull ingestion path. Each configured
// endpoint gets one Poller, run as a supervised service, that fetches on a
// fixed interval and hands every returned item to the normalizer and the
// ingestion coordinator. Pulled events skip webhook verification.
package poller
