// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package rollup

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/socialpulse/internal/eventprocessor"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/metrics"
	"github.com/tomtom215/socialpulse/internal/store"
)

// HandlerName is the router handler and metrics label for the consumer.
const HandlerName = "rollup"

// Consumer increments per-user, per-platform counters for every attributed
// event it receives. Each event counts once regardless of redelivery.
type Consumer struct {
	rollups store.RollupStore
	ledger  Ledger
	logger  zerolog.Logger

	applied    atomic.Int64
	skipped    atomic.Int64
	duplicates atomic.Int64
}

// NewConsumer wires a consumer to its store and ledger.
func NewConsumer(rollups store.RollupStore, ledger Ledger) (*Consumer, error) {
	if rollups == nil {
		return nil, fmt.Errorf("rollup store required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	return &Consumer{
		rollups: rollups,
		ledger:  ledger,
		logger:  logging.WithComponent("rollup"),
	}, nil
}

// Handle is a message.NoPublishHandlerFunc. A returned error sends the
// message back through Retry and, once retries run out, to the poison topic.
func (c *Consumer) Handle(msg *message.Message) error {
	start := time.Now()

	e, err := eventprocessor.DecodeEvent(msg)
	if err != nil {
		metrics.RecordConsumed(HandlerName, "malformed", time.Since(start))
		return err
	}

	if e.AttributedUserID == "" {
		c.skipped.Add(1)
		metrics.RecordConsumed(HandlerName, "skipped", time.Since(start))
		return nil
	}

	ctx := msg.Context()
	claimed, err := c.ledger.Claim(ctx, e.ID)
	if err != nil {
		metrics.RecordConsumed(HandlerName, "error", time.Since(start))
		return fmt.Errorf("ledger claim: %w", err)
	}
	if !claimed {
		c.duplicates.Add(1)
		metrics.RecordConsumed(HandlerName, "duplicate", time.Since(start))
		c.logger.Debug().Str("event_id", e.ID).Msg("Redelivered event already counted")
		return nil
	}

	if err := c.rollups.ApplyRollup(ctx, e.AttributedUserID, e.Platform, 1, e.IngestedAt); err != nil {
		if relErr := c.ledger.Release(ctx, e.ID); relErr != nil {
			c.logger.Error().Err(relErr).Str("event_id", e.ID).
				Msg("Failed to release ledger claim, event will not be recounted")
		}
		metrics.RecordConsumed(HandlerName, "error", time.Since(start))
		return fmt.Errorf("apply rollup for event %s: %w", e.ID, err)
	}

	c.applied.Add(1)
	metrics.RecordConsumed(HandlerName, "applied", time.Since(start))
	c.logger.Debug().
		Str("event_id", e.ID).
		Str("user_id", e.AttributedUserID).
		Str("platform", string(e.Platform)).
		Msg("Rollup applied")
	return nil
}

// ConsumerStats holds runtime counters.
type ConsumerStats struct {
	Applied    int64
	Skipped    int64
	Duplicates int64
}

// Stats returns current counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Applied:    c.applied.Load(),
		Skipped:    c.skipped.Load(),
		Duplicates: c.duplicates.Load(),
	}
}
