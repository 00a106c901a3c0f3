// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/eventprocessor"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/rollup"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/supervisor"
	ws "github.com/tomtom215/socialpulse/internal/websocket"
)

// PipelineComponents is everything downstream of a persisted event: the
// queue transport, the dispatcher that feeds it and the router that
// consumes it.
type PipelineComponents struct {
	transport  *eventprocessor.Transport
	publisher  *eventprocessor.Publisher
	dispatcher *eventprocessor.Dispatcher
	router     *eventprocessor.Router
	ledger     rollup.Ledger
}

// InitPipeline connects the queue and registers the rollup and stream
// consumers. hub may be nil when the stream is disabled.
func InitPipeline(ctx context.Context, cfg *config.Config, rollups store.RollupStore, hub *ws.Hub) (*PipelineComponents, error) {
	wmLogger := logging.NewWatermillAdapter()

	transport, err := eventprocessor.NewTransport(ctx, &cfg.Queue, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("open queue transport: %w", err)
	}
	p := &PipelineComponents{transport: transport}

	breaker := eventprocessor.NewCircuitBreaker[struct{}]("queue-publisher", &cfg.Breaker)
	p.publisher = eventprocessor.NewPublisher(transport.Publisher(), breaker)
	p.dispatcher = eventprocessor.NewDispatcher(p.publisher, cfg.Queue.Topic, cfg.Queue.BufferSize, cfg.Queue.PublishTimeout)

	var poison = transport.Publisher()
	if cfg.Queue.PoisonTopic == "" {
		poison = nil
	}
	p.router, err = eventprocessor.NewRouter(eventprocessor.RouterConfigFromQueue(&cfg.Queue), poison, wmLogger)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("create router: %w", err)
	}
	p.dispatcher.WaitFor(p.router.Running())

	if cfg.Rollup.Enabled {
		if err := p.addRollupConsumer(cfg, rollups); err != nil {
			p.Close()
			return nil, err
		}
	}
	if hub != nil {
		if err := p.addStreamConsumer(cfg, hub); err != nil {
			p.Close()
			return nil, err
		}
	}

	logging.Info().
		Str("backend", cfg.Queue.Backend).
		Str("topic", cfg.Queue.Topic).
		Bool("rollups", cfg.Rollup.Enabled).
		Bool("stream", hub != nil).
		Msg("Event pipeline initialized")
	return p, nil
}

func (p *PipelineComponents) addRollupConsumer(cfg *config.Config, rollups store.RollupStore) error {
	ledger, err := rollup.OpenLedger(&cfg.Rollup)
	if err != nil {
		return fmt.Errorf("open rollup ledger: %w", err)
	}
	p.ledger = ledger

	consumer, err := rollup.NewConsumer(rollups, ledger)
	if err != nil {
		return fmt.Errorf("create rollup consumer: %w", err)
	}
	sub, err := p.transport.Subscriber(rollup.HandlerName)
	if err != nil {
		return fmt.Errorf("subscribe rollup consumer: %w", err)
	}
	p.router.AddConsumerHandler(rollup.HandlerName, cfg.Queue.Topic, sub, consumer.Handle)
	return nil
}

func (p *PipelineComponents) addStreamConsumer(cfg *config.Config, hub *ws.Hub) error {
	handler, err := eventprocessor.NewStreamHandler(hub)
	if err != nil {
		return fmt.Errorf("create stream handler: %w", err)
	}
	sub, err := p.transport.Subscriber("stream")
	if err != nil {
		return fmt.Errorf("subscribe stream consumer: %w", err)
	}
	p.router.AddConsumerHandler("stream", cfg.Queue.Topic, sub, handler.Handle)
	return nil
}

// Dispatcher is handed to the ingestion coordinator.
func (p *PipelineComponents) Dispatcher() *eventprocessor.Dispatcher {
	return p.dispatcher
}

// Supervise adds the long-running pieces to the tree. The dispatcher
// buffers until the router has subscribed every consumer, so events
// ingested during startup are not lost.
func (p *PipelineComponents) Supervise(tree *supervisor.SupervisorTree) {
	tree.AddMessagingService(p.dispatcher)
	tree.AddMessagingService(p.router)
	if svc, ok := p.ledger.(suture.Service); ok {
		tree.AddDataService(svc)
	}
}

// Close releases the router, ledger and transport in that order.
func (p *PipelineComponents) Close() error {
	var errs []error
	if p.router != nil {
		if err := p.router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close router: %w", err))
		}
	}
	if p.ledger != nil {
		if err := p.ledger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rollup ledger: %w", err))
		}
	}
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if p.transport != nil {
		if err := p.transport.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close transport: %w", err))
		}
	}
	return errors.Join(errs...)
}
