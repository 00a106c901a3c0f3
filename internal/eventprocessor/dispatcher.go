// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package eventprocessor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/metrics"
	"github.com/tomtom215/socialpulse/internal/models"
)

// drainTimeout bounds how long Serve keeps publishing buffered
// notifications after its context is canceled.
const drainTimeout = 5 * time.Second

// Dispatcher hands ingested events to the queue without ever blocking the
// ingestion path. Notify enqueues into a bounded buffer; Serve drains it.
type Dispatcher struct {
	publisher      *Publisher
	topic          string
	publishTimeout time.Duration
	events         chan *models.Event
	ready          <-chan struct{}
	logger         zerolog.Logger
}

// NewDispatcher creates a dispatcher with room for bufferSize notifications.
func NewDispatcher(publisher *Publisher, topic string, bufferSize int, publishTimeout time.Duration) *Dispatcher {
	if publishTimeout <= 0 {
		publishTimeout = 5 * time.Second
	}
	return &Dispatcher{
		publisher:      publisher,
		topic:          topic,
		publishTimeout: publishTimeout,
		events:         make(chan *models.Event, max(bufferSize, 1)),
		logger:         logging.WithComponent("dispatcher"),
	}
}

// Notify enqueues e. When the buffer is full the notification is dropped,
// counted and logged; the caller is never held up.
func (d *Dispatcher) Notify(e *models.Event) {
	select {
	case d.events <- e:
		metrics.SetDispatchQueueDepth(len(d.events))
	default:
		metrics.RecordDispatchDropped()
		d.logger.Warn().
			Str("event_id", e.ID).
			Str("platform", string(e.Platform)).
			Msg("Dispatch buffer full, dropping ingested notification")
	}
}

// WaitFor holds publishing until ready closes, typically Router.Running.
// The in-process channel transport drops messages published before a
// subscriber exists, so notifications stay buffered until then. Call it
// before Serve.
func (d *Dispatcher) WaitFor(ready <-chan struct{}) {
	d.ready = ready
}

// Pending returns the number of buffered notifications.
func (d *Dispatcher) Pending() int {
	return len(d.events)
}

// Serve publishes buffered notifications until ctx is canceled, then makes
// a bounded attempt to flush what is left. Nothing is published, or
// flushed, before the WaitFor channel closes.
func (d *Dispatcher) Serve(ctx context.Context) error {
	if d.ready != nil {
		select {
		case <-d.ready:
		case <-ctx.Done():
			d.logger.Warn().Int("pending", len(d.events)).Msg("Dispatcher stopped before consumers were ready")
			return ctx.Err()
		}
	}

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return ctx.Err()
		case e := <-d.events:
			d.publish(ctx, e)
		}
	}
}

func (d *Dispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case e := <-d.events:
			d.publish(ctx, e)
		default:
			return
		case <-ctx.Done():
			d.logger.Warn().Int("pending", len(d.events)).Msg("Dispatcher drain timed out")
			return
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, e *models.Event) {
	metrics.SetDispatchQueueDepth(len(d.events))

	msg, err := NewEventMessage(e)
	if err != nil {
		d.logger.Error().Err(err).Str("event_id", e.ID).Msg("Failed to encode ingested notification")
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()
	if err := d.publisher.Publish(pubCtx, d.topic, msg); err != nil {
		d.logger.Warn().Err(err).Str("event_id", e.ID).Msg("Failed to publish ingested notification")
	}
}

func (d *Dispatcher) String() string {
	return "event-dispatcher"
}
