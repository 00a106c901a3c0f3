// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package ingest turns validated drafts into persisted canonical events.
//
// Coordinator.IngestOne runs, in order: validation, owner attribution,
// identity assignment (UUIDv4 id, UTC ingested_at), construction through
// models.NewEvent, the append-only insert, and a non-blocking notification
// to the Dispatcher.
//
// Attribution never fails ingestion. The Resolver answers from an LRU when
// it can, otherwise asks the store's Directory under a deadline and a
// circuit breaker; any failure leaves attributed_user_id empty.
//
// IngestBatch checks the batch size, prefilters every item, then runs the
// survivors through IngestOne on an errgroup bounded by
// ingest.batch_concurrency.
package ingest
