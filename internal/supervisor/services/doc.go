// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package services adapts components whose lifecycle is not already a
// context-aware Serve method to suture.Service.
//
// Most SocialPulse components (the websocket hub, the event dispatcher, the
// message router, pollers and the rollup ledger GC loop) implement Serve
// and String themselves and are added to the tree directly. Only the HTTP
// server, which blocks in ListenAndServe and stops through Shutdown, needs
// a wrapper.
package services
