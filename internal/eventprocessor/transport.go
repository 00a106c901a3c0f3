// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/socialpulse/internal/config"
)

// Transport owns the broker connection behind the ingestion queue: an
// in-process gochannel, or NATS JetStream (optionally embedded).
type Transport struct {
	cfg       config.QueueConfig
	logger    watermill.LoggerAdapter
	publisher message.Publisher

	// newSubscriber builds one subscriber per named consumer.
	newSubscriber func(consumer string) (message.Subscriber, error)

	mu          sync.Mutex
	subscribers []message.Subscriber
	embedded    *EmbeddedServer
	closed      bool
}

// NewTransport connects the backend named by cfg.Backend.
func NewTransport(ctx context.Context, cfg *config.QueueConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	t := &Transport{cfg: *cfg, logger: logger}

	switch cfg.Backend {
	case "", config.QueueChannel:
		t.openChannel()
		return t, nil
	case config.QueueNATS:
		if err := t.openNATS(ctx); err != nil {
			t.Close()
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}

// openChannel uses a single GoChannel for both directions. Every Subscribe
// call receives every message, which gives each consumer its own copy.
func (t *Transport) openChannel() {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(max(t.cfg.BufferSize, 1)),
	}, t.logger)

	t.publisher = pubSub
	t.newSubscriber = func(string) (message.Subscriber, error) {
		return pubSub, nil
	}
}

func (t *Transport) openNATS(ctx context.Context) error {
	url := t.cfg.NATSURL
	if t.cfg.Embedded {
		srv, err := NewEmbeddedServer(t.cfg.StoreDir)
		if err != nil {
			return err
		}
		t.embedded = srv
		url = srv.ClientURL()
	}

	if err := t.ensureStream(ctx, url); err != nil {
		return err
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: t.natsOptions("publisher"),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, t.logger)
	if err != nil {
		return fmt.Errorf("create watermill publisher: %w", err)
	}
	t.publisher = pub

	t.newSubscriber = func(consumer string) (message.Subscriber, error) {
		durable := durableName(t.cfg.Durable, consumer)
		sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
			URL:              url,
			QueueGroupPrefix: durable,
			SubscribersCount: max(t.cfg.SubscriberCount, 1),
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     t.cfg.CloseTimeout,
			NatsOptions:      t.natsOptions(consumer),
			Unmarshaler:      &wmNats.NATSMarshaler{},
			JetStream: wmNats.JetStreamConfig{
				AutoProvision: false,
				AckAsync:      false,
				DurablePrefix: durable,
				SubscribeOptions: []natsgo.SubOpt{
					natsgo.BindStream(t.cfg.StreamName),
					natsgo.MaxDeliver(t.cfg.MaxRetries + 2),
					natsgo.DeliverNew(),
				},
			},
		}, t.logger)
		if err != nil {
			return nil, fmt.Errorf("create watermill subscriber %s: %w", consumer, err)
		}
		return sub, nil
	}
	return nil
}

func (t *Transport) ensureStream(ctx context.Context, url string) error {
	nc, err := natsgo.Connect(url, natsgo.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("open JetStream: %w", err)
	}

	subjects := []string{t.cfg.Topic}
	if t.cfg.PoisonTopic != "" {
		subjects = append(subjects, t.cfg.PoisonTopic)
	}
	_, err = EnsureStream(ctx, js, StreamSpec{
		Name:            t.cfg.StreamName,
		Subjects:        subjects,
		MaxAge:          7 * 24 * time.Hour,
		DuplicateWindow: 2 * time.Minute,
	})
	return err
}

func (t *Transport) natsOptions(client string) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("socialpulse-" + client),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				t.logger.Error("NATS disconnected", err, watermill.LogFields{"client": client})
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			t.logger.Info("NATS reconnected", watermill.LogFields{"client": client, "url": nc.ConnectedUrl()})
		}),
	}
}

// durableName builds a JetStream durable, which may not contain dots.
func durableName(prefix, consumer string) string {
	name := consumer
	if prefix != "" {
		name = prefix + "-" + consumer
	}
	return strings.NewReplacer(".", "-", "*", "-", ">", "-").Replace(name)
}

// Publisher returns the raw watermill publisher, for the poison queue.
func (t *Transport) Publisher() message.Publisher {
	return t.publisher
}

// Subscriber returns a subscriber for the named consumer. On NATS each
// consumer gets its own durable, so every consumer sees every message.
func (t *Transport) Subscriber(consumer string) (message.Subscriber, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, errors.New("transport is closed")
	}

	sub, err := t.newSubscriber(consumer)
	if err != nil {
		return nil, err
	}
	t.subscribers = append(t.subscribers, sub)
	return sub, nil
}

// Close closes subscribers, the publisher and any embedded server.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error
	seen := make(map[any]bool)
	closeOnce := func(c interface{ Close() error }) {
		if c == nil || seen[c] {
			return
		}
		seen[c] = true
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sub := range t.subscribers {
		closeOnce(sub)
	}
	if t.publisher != nil {
		closeOnce(t.publisher)
	}
	if t.embedded != nil {
		t.embedded.Shutdown()
	}
	return errors.Join(errs...)
}
