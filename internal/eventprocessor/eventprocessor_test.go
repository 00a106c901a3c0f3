// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/models"
)

func testQueueConfig() *config.QueueConfig {
	return &config.QueueConfig{
		Backend:        config.QueueChannel,
		Topic:          "events.ingested",
		PoisonTopic:    "events.ingested.poison",
		BufferSize:     16,
		MaxRetries:     1,
		RetryInterval:  time.Millisecond,
		PublishTimeout: time.Second,
		CloseTimeout:   time.Second,
	}
}

func testEvent(id string) *models.Event {
	return &models.Event{
		ID:               id,
		Type:             models.EventTypeFollow,
		Platform:         models.PlatformThreads,
		Actor:            models.Actor{PlatformUserID: "a1", Username: "alice"},
		Subject:          models.Subject{ContentID: "c1", ContentType: models.ContentTypeProfile, OwnerPlatformID: "o1"},
		Metrics:          models.Metrics{Count: 1},
		Metadata:         models.Metadata{Source: models.SourceWebhook},
		Timestamp:        time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		IngestedAt:       time.Date(2026, 5, 1, 8, 0, 1, 0, time.UTC),
		AttributedUserID: "user-1",
	}
}

// collector records decoded events from a consumer handler.
type collector struct {
	mu     sync.Mutex
	events []*models.Event
	got    chan struct{}
}

func newCollector() *collector {
	return &collector{got: make(chan struct{}, 64)}
}

func (c *collector) handle(msg *message.Message) error {
	e, err := DecodeEvent(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.got <- struct{}{}
	return nil
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-deadline:
			t.Fatalf("Timed out waiting for message %d of %d", i+1, n)
		}
	}
}

func startRouter(t *testing.T, r *Router) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case <-r.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("Router did not start")
	}
}

// ============================================================================
// Serializer
// ============================================================================

func TestNewEventMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewEventMessage(testEvent("evt-1"))
	if err != nil {
		t.Fatalf("NewEventMessage failed: %v", err)
	}
	if msg.UUID != "evt-1" {
		t.Errorf("Expected message UUID evt-1, got %s", msg.UUID)
	}
	if got := msg.Metadata.Get(natsgo.MsgIdHdr); got != "evt-1" {
		t.Errorf("Expected Nats-Msg-Id evt-1, got %q", got)
	}
	if got := msg.Metadata.Get(MetadataPlatform); got != "threads" {
		t.Errorf("Expected platform metadata threads, got %q", got)
	}

	decoded, err := DecodeEvent(msg)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.AttributedUserID != "user-1" || !decoded.Timestamp.Equal(testEvent("x").Timestamp) {
		t.Errorf("Expected event to survive the queue, got %+v", decoded)
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "{"},
		{"missing id", `{"platform":"twitter"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeEvent(message.NewMessage("m", []byte(tt.payload))); err == nil {
				t.Error("Expected decode error")
			}
		})
	}
}

// ============================================================================
// Publisher
// ============================================================================

type failingPublisher struct {
	calls int
}

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.calls++
	return errors.New("broker unavailable")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublisher_BreakerOpens(t *testing.T) {
	t.Parallel()

	fp := &failingPublisher{}
	breaker := NewCircuitBreaker[struct{}]("test-publish", &config.BreakerConfig{
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	})
	p := NewPublisher(fp, breaker)

	for i := 0; i < 2; i++ {
		if err := p.Publish(context.Background(), "t", message.NewMessage("m", nil)); err == nil {
			t.Fatal("Expected publish error")
		}
	}
	err := p.Publish(context.Background(), "t", message.NewMessage("m", nil))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState once tripped, got %v", err)
	}
	if fp.calls != 2 {
		t.Errorf("Expected broker to be called 2 times, got %d", fp.calls)
	}
}

func TestPublisher_Closed(t *testing.T) {
	t.Parallel()

	p := NewPublisher(&failingPublisher{}, nil)
	_ = p.Close()
	if err := p.Publish(context.Background(), "t", message.NewMessage("m", nil)); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Expected ErrPublisherClosed, got %v", err)
	}
}

// ============================================================================
// Dispatcher
// ============================================================================

func TestDispatcher_DeliversToEveryConsumer(t *testing.T) {
	t.Parallel()

	cfg := testQueueConfig()
	transport, err := NewTransport(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	t.Cleanup(func() { transport.Close() })

	router, err := NewRouter(RouterConfigFromQueue(cfg), transport.Publisher(), nil)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}

	first, second := newCollector(), newCollector()
	for name, c := range map[string]*collector{"first": first, "second": second} {
		sub, err := transport.Subscriber(name)
		if err != nil {
			t.Fatalf("Subscriber failed: %v", err)
		}
		router.AddConsumerHandler(name, cfg.Topic, sub, c.handle)
	}
	startRouter(t, router)

	d := NewDispatcher(NewPublisher(transport.Publisher(), nil), cfg.Topic, cfg.BufferSize, cfg.PublishTimeout)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.Serve(ctx)

	d.Notify(testEvent("evt-a"))
	d.Notify(testEvent("evt-b"))

	waitFor(t, first.got, 2)
	waitFor(t, second.got, 2)
}

func TestDispatcher_HoldsUntilRouterRunning(t *testing.T) {
	t.Parallel()

	cfg := testQueueConfig()
	transport, err := NewTransport(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	t.Cleanup(func() { transport.Close() })

	router, err := NewRouter(RouterConfigFromQueue(cfg), transport.Publisher(), nil)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	c := newCollector()
	sub, err := transport.Subscriber("early")
	if err != nil {
		t.Fatalf("Subscriber failed: %v", err)
	}
	router.AddConsumerHandler("early", cfg.Topic, sub, c.handle)

	d := NewDispatcher(NewPublisher(transport.Publisher(), nil), cfg.Topic, cfg.BufferSize, cfg.PublishTimeout)
	d.WaitFor(router.Running())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.Serve(ctx)

	// Ingested before any consumer has subscribed.
	d.Notify(testEvent("evt-early"))
	time.Sleep(50 * time.Millisecond)
	if got := d.Pending(); got != 1 {
		t.Fatalf("Expected notification to stay buffered, got %d pending", got)
	}

	startRouter(t, router)
	waitFor(t, c.got, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) != 1 || c.events[0].ID != "evt-early" {
		t.Errorf("Expected evt-early to be delivered, got %d events", len(c.events))
	}
}

func TestDispatcher_WaitForCanceled(t *testing.T) {
	t.Parallel()

	fp := &failingPublisher{}
	d := NewDispatcher(NewPublisher(fp, nil), "t", 4, time.Second)
	d.WaitFor(make(chan struct{}))
	d.Notify(testEvent("buffered"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if fp.calls != 0 {
		t.Errorf("Expected no publish before ready, got %d", fp.calls)
	}
	if d.Pending() != 1 {
		t.Errorf("Expected notification to remain buffered, got %d pending", d.Pending())
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(NewPublisher(&failingPublisher{}, nil), "t", 1, time.Second)

	d.Notify(testEvent("kept"))
	d.Notify(testEvent("dropped"))

	if got := d.Pending(); got != 1 {
		t.Errorf("Expected 1 pending notification, got %d", got)
	}
}

func TestDispatcher_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	fp := &failingPublisher{}
	d := NewDispatcher(NewPublisher(fp, nil), "t", 4, time.Second)
	d.Notify(testEvent("buffered"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if d.Pending() != 0 {
		t.Errorf("Expected buffer drained on shutdown, got %d pending", d.Pending())
	}
}

// ============================================================================
// Router
// ============================================================================

func TestRouter_PoisonQueueAfterRetries(t *testing.T) {
	t.Parallel()

	cfg := testQueueConfig()
	transport, err := NewTransport(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	t.Cleanup(func() { transport.Close() })

	router, err := NewRouter(RouterConfigFromQueue(cfg), transport.Publisher(), nil)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}

	var mu sync.Mutex
	attempts := map[string]int{}
	failing, _ := transport.Subscriber("failing")
	router.AddConsumerHandler("failing", cfg.Topic, failing, func(msg *message.Message) error {
		mu.Lock()
		attempts[msg.UUID]++
		mu.Unlock()
		if msg.UUID == "panics" {
			panic("handler bug")
		}
		return errors.New("always fails")
	})

	poisoned := newCollector()
	poisonSub, _ := transport.Subscriber("poison")
	router.AddConsumerHandler("poison", cfg.PoisonTopic, poisonSub, poisoned.handle)
	startRouter(t, router)

	pub := NewPublisher(transport.Publisher(), nil)
	for _, id := range []string{"errors", "panics"} {
		msg, _ := NewEventMessage(testEvent(id))
		if err := pub.Publish(context.Background(), cfg.Topic, msg); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	waitFor(t, poisoned.got, 2)

	mu.Lock()
	defer mu.Unlock()
	for _, id := range []string{"errors", "panics"} {
		if attempts[id] != cfg.MaxRetries+1 {
			t.Errorf("%s: Expected %d attempts, got %d", id, cfg.MaxRetries+1, attempts[id])
		}
	}
}

// ============================================================================
// Transport
// ============================================================================

func TestNewTransport_UnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := testQueueConfig()
	cfg.Backend = "kafka"
	if _, err := NewTransport(context.Background(), cfg, nil); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestDurableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, consumer, want string
	}{
		{"rollup", "stream", "rollup-stream"},
		{"", "rollup", "rollup"},
		{"socialpulse.v1", "rollup", "socialpulse-v1-rollup"},
	}
	for _, tt := range tests {
		if got := durableName(tt.prefix, tt.consumer); got != tt.want {
			t.Errorf("durableName(%q, %q): Expected %q, got %q", tt.prefix, tt.consumer, tt.want, got)
		}
	}
}

func TestTransport_EmbeddedNATS(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS test in short mode")
	}

	cfg := testQueueConfig()
	cfg.Backend = config.QueueNATS
	cfg.Embedded = true
	cfg.StoreDir = t.TempDir()
	cfg.StreamName = "SOCIALPULSE_TEST"
	cfg.Durable = "test"
	cfg.SubscriberCount = 1

	transport, err := NewTransport(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewTransport failed: %v", err)
	}
	t.Cleanup(func() { transport.Close() })

	router, err := NewRouter(RouterConfigFromQueue(cfg), transport.Publisher(), nil)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	got := newCollector()
	sub, err := transport.Subscriber("rollup")
	if err != nil {
		t.Fatalf("Subscriber failed: %v", err)
	}
	router.AddConsumerHandler("rollup", cfg.Topic, sub, got.handle)
	startRouter(t, router)

	pub := NewPublisher(transport.Publisher(), nil)
	msg, _ := NewEventMessage(testEvent("nats-1"))
	if err := pub.Publish(context.Background(), cfg.Topic, msg); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	waitFor(t, got.got, 1)
	got.mu.Lock()
	defer got.mu.Unlock()
	if got.events[0].ID != "nats-1" {
		t.Errorf("Expected nats-1, got %s", got.events[0].ID)
	}
}
