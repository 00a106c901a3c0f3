// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package rollup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/socialpulse/internal/logging"
)

const ledgerKeyPrefix = "rollup:applied:"

// BadgerLedger persists claimed event ids so deduplication survives a
// restart. Entries expire through Badger's native TTL.
type BadgerLedger struct {
	db  *badger.DB
	ttl time.Duration

	mu     sync.RWMutex
	closed bool
}

// OpenBadgerLedger opens (or creates) a ledger at path.
func OpenBadgerLedger(path string, ttl time.Duration) (*BadgerLedger, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true
	opts.Compression = options.Snappy
	opts.Logger = nil
	return openBadger(opts, ttl)
}

// OpenInMemoryBadgerLedger opens a ledger without a directory, for tests.
func OpenInMemoryBadgerLedger(ttl time.Duration) (*BadgerLedger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts, ttl)
}

func openBadger(opts badger.Options, ttl time.Duration) (*BadgerLedger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}

	logging.Info().
		Str("path", opts.Dir).
		Bool("in_memory", opts.InMemory).
		Dur("ttl", ttl).
		Msg("Rollup ledger opened")
	return &BadgerLedger{db: db, ttl: ttl}, nil
}

// Claim runs a read-then-write transaction. Two concurrent claims of the
// same id conflict; the loser gets badger.ErrConflict, which the consumer
// returns so the router retries it.
func (l *BadgerLedger) Claim(_ context.Context, eventID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false, ErrLedgerClosed
	}

	key := []byte(ledgerKeyPrefix + eventID)
	claimed := false
	err := l.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		stamp := []byte(time.Now().UTC().Format(time.RFC3339))
		if err := txn.SetEntry(badger.NewEntry(key, stamp).WithTTL(l.ttl)); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", eventID, err)
	}
	return claimed, nil
}

func (l *BadgerLedger) Release(_ context.Context, eventID string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrLedgerClosed
	}

	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(ledgerKeyPrefix + eventID))
	})
	if err != nil {
		return fmt.Errorf("release %s: %w", eventID, err)
	}
	return nil
}

// RunGC reclaims value log space. badger.ErrNoRewrite means there was
// nothing to do and is not reported.
func (l *BadgerLedger) RunGC() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed || l.db.Opts().InMemory {
		return nil
	}
	if err := l.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return err
	}
	return nil
}

func (l *BadgerLedger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.db.Close()
}

// Serve runs value log GC every ten minutes until ctx is canceled. It
// satisfies suture.Service.
func (l *BadgerLedger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Rollup ledger GC failed")
			}
		}
	}
}

func (l *BadgerLedger) String() string {
	return "rollup-ledger-gc"
}
