// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package store persists canonical events append-only.
//
// Three backends implement Backend:
//
//   - Memory: maps behind an RWMutex, the default and the test double
//   - DuckDB: an embedded analytics file via duckdb-go
//   - Postgres: a pgxpool whose schema also blocks UPDATE, DELETE and
//     TRUNCATE on events with triggers
//
// Every backend enforces two unique keys on events: the id, and
// (platform, raw_event_id) when a raw id is present. A collision on the first
// is ErrDuplicateEvent (a storage fault, since ids are minted fresh); on the
// second ErrDuplicateRawEvent (a redelivery). Update and Delete always return
// ErrImmutabilityViolation.
//
// Backends also hold the account directory used for attribution and the
// per-user rollup counters maintained by the rollup consumer.
package store
