// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package rollup

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/socialpulse/internal/cache"
	"github.com/tomtom215/socialpulse/internal/config"
)

// ErrLedgerClosed is returned after Close.
var ErrLedgerClosed = errors.New("rollup ledger is closed")

// Ledger remembers which events have already been counted so a redelivered
// message does not increment a rollup twice.
type Ledger interface {
	// Claim records eventID and reports true if it was not already present.
	Claim(ctx context.Context, eventID string) (bool, error)

	// Release forgets eventID after a failed apply so a retry can claim it.
	Release(ctx context.Context, eventID string) error

	Close() error
}

// Default ledger bounds. Redeliveries arrive within minutes, so a day of
// history is generous.
const (
	DefaultLedgerTTL  = 24 * time.Hour
	DefaultLedgerSize = 100_000
)

// OpenLedger returns a Badger ledger when cfg.LedgerPath is set and an
// in-memory one otherwise.
func OpenLedger(cfg *config.RollupConfig) (Ledger, error) {
	ttl := cfg.LedgerTTL
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	if cfg.LedgerPath == "" {
		size := cfg.LedgerSize
		if size <= 0 {
			size = DefaultLedgerSize
		}
		return NewMemoryLedger(size, ttl), nil
	}
	return OpenBadgerLedger(cfg.LedgerPath, ttl)
}

// MemoryLedger is a bounded ledger that forgets on restart. Eviction under
// pressure can let a very late redelivery count twice.
type MemoryLedger struct {
	seen *cache.LRU[string, struct{}]
}

// NewMemoryLedger creates a ledger holding at most size event ids for ttl.
func NewMemoryLedger(size int, ttl time.Duration) *MemoryLedger {
	return &MemoryLedger{seen: cache.NewLRU[string, struct{}](size, ttl)}
}

func (l *MemoryLedger) Claim(_ context.Context, eventID string) (bool, error) {
	return l.seen.AddIfAbsent(eventID, struct{}{}), nil
}

func (l *MemoryLedger) Release(_ context.Context, eventID string) error {
	l.seen.Remove(eventID)
	return nil
}

func (l *MemoryLedger) Close() error { return nil }
