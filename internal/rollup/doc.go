// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

// Package rollup maintains user_platform_rollups from the events.ingested
// stream.
//
// The Consumer runs behind the eventprocessor Router, so a failed apply is
// retried with backoff and eventually parked on the poison topic. Because
// retries and JetStream redeliveries can hand the same event over more than
// once, each event id is claimed in a Ledger before its +1 is applied; the
// claim is released again if the apply fails.
//
// Two ledgers exist: MemoryLedger (bounded LRU with TTL) and BadgerLedger,
// which survives restarts and is selected by rollup.ledger_path.
package rollup
