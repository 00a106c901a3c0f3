// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package webhook implements the per-platform subscription handshakes and
// delivery signature checks for inbound webhooks.
//
// A Verifier sees each request as a transition in a two-state machine.
// Handshakes (GET) stay in AwaitingVerification and are answered directly
// from the Decision. Deliveries (POST, and every TikTok call) move to
// AwaitingNotification and, once any configured signature passes, proceed
// to normalization.
package webhook
