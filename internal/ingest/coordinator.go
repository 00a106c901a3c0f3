// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/metrics"
	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/normalizer"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/validation"
)

// Dispatcher receives every persisted event for background processing.
// Notify must not block.
type Dispatcher interface {
	Notify(e *models.Event)
}

type noopDispatcher struct{}

func (noopDispatcher) Notify(*models.Event) {}

// Coordinator is the only writer of events. It assigns identity, attributes
// ownership and appends to the store. It has no update or delete path.
type Coordinator struct {
	events      store.EventStore
	resolver    *Resolver
	dispatcher  Dispatcher
	concurrency int
	now         func() time.Time
	newID       func() string
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithDispatcher sets where persisted events are announced.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Coordinator) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// WithClock overrides the time source used for validation and ingested_at.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithIDGenerator overrides event id minting.
func WithIDGenerator(newID func() string) Option {
	return func(c *Coordinator) {
		c.newID = newID
	}
}

// NewCoordinator wires a coordinator. resolver may be nil to disable
// attribution.
func NewCoordinator(events store.EventStore, resolver *Resolver, cfg *config.IngestConfig, opts ...Option) *Coordinator {
	c := &Coordinator{
		events:      events,
		resolver:    resolver,
		dispatcher:  noopDispatcher{},
		concurrency: cfg.BatchConcurrency,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	if c.concurrency <= 0 {
		c.concurrency = 16
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IngestOne validates, attributes, identifies and persists one draft.
//
// The caller's cancellation is not honored once ingestion starts: a client
// hanging up must not leave an event half-attributed or unannounced.
func (c *Coordinator) IngestOne(ctx context.Context, d *models.Draft) (*models.Event, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	now := c.now().UTC()

	valid, err := validation.ValidateDraft(d, now)
	if err != nil {
		metrics.RecordRejected(draftPlatform(d), "validation")
		return nil, err
	}

	attributed := c.resolver.Resolve(ctx, valid.Platform, valid.Subject.OwnerPlatformID)

	e, err := models.NewEvent(valid, models.Identity{
		ID:               c.newID(),
		IngestedAt:       now,
		AttributedUserID: attributed,
	})
	if err != nil {
		metrics.RecordRejected(string(valid.Platform), "schema")
		return nil, err
	}

	if err := c.events.Insert(ctx, e); err != nil {
		reason := "storage"
		if errors.Is(err, store.ErrDuplicateRawEvent) {
			reason = "duplicate"
		}
		metrics.RecordRejected(string(e.Platform), reason)
		return nil, fmt.Errorf("persist event: %w", err)
	}

	metrics.RecordIngested(string(e.Platform), string(e.Metadata.Source), time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("event_id", e.ID).
		Str("platform", string(e.Platform)).
		Str("type", string(e.Type)).
		Bool("attributed", e.AttributedUserID != "").
		Msg("Event ingested")

	c.dispatcher.Notify(e.Clone())
	return e, nil
}

// BatchFailure is one rejected batch item.
type BatchFailure struct {
	Index int
	Draft *models.Draft
	Error error
}

// BatchResult partitions a batch. Every input index appears exactly once,
// and both lists follow input order.
type BatchResult struct {
	Successful []string
	Failed     []BatchFailure
}

// IngestBatch ingests up to validation.MaxBatchSize drafts. A size
// violation rejects the whole batch before anything is processed.
// Otherwise every item is prefiltered first, then the survivors run
// concurrently; one item's failure never affects another.
func (c *Coordinator) IngestBatch(ctx context.Context, drafts []*models.Draft) (*BatchResult, error) {
	if err := validation.ValidateBatchSize(len(drafts)); err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	metrics.RecordBatch(len(drafts))

	type outcome struct {
		id  string
		err error
	}
	outcomes := make([]outcome, len(drafts))

	runnable := make([]int, 0, len(drafts))
	for i, d := range drafts {
		if err := validation.PrefilterDraft(d); err != nil {
			metrics.RecordRejected(draftPlatform(d), "validation")
			outcomes[i].err = err
			continue
		}
		runnable = append(runnable, i)
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for _, i := range runnable {
		g.Go(func() error {
			e, err := c.IngestOne(ctx, drafts[i])
			if err != nil {
				outcomes[i].err = err
				return nil
			}
			outcomes[i].id = e.ID
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{Successful: []string{}, Failed: []BatchFailure{}}
	for i, o := range outcomes {
		if o.err != nil {
			result.Failed = append(result.Failed, BatchFailure{Index: i, Draft: drafts[i], Error: o.err})
			continue
		}
		result.Successful = append(result.Successful, o.id)
	}

	logging.Ctx(ctx).Info().
		Int("submitted", len(drafts)).
		Int("successful", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Msg("Batch ingested")
	return result, nil
}

// IngestRaw normalizes a platform payload and ingests the result. Used by
// the webhook and poller paths.
func (c *Coordinator) IngestRaw(ctx context.Context, platform models.Platform, raw []byte, opts normalizer.Options) (*models.Event, error) {
	draft, err := normalizer.Normalize(platform, raw, opts)
	if err != nil {
		metrics.RecordRejected(string(platform), "normalization")
		return nil, err
	}
	return c.IngestOne(ctx, draft)
}

func draftPlatform(d *models.Draft) string {
	if d == nil {
		return ""
	}
	return string(d.Platform)
}
