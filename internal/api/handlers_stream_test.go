// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/socialpulse/internal/models"
	ws "github.com/tomtom215/socialpulse/internal/websocket"
)

func TestStream_DeliversFilteredEvents(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Serve(ctx) }()

	s := newTestServer(t, false, hub)
	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream?platform=tiktok"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected the client to register")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(models.PlatformTwitter, []byte(`{"id":"skip"}`))
	hub.Broadcast(models.PlatformTikTok, []byte(`{"id":"keep"}`))

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != ws.MessageTypeEvent {
		t.Errorf("Expected type event, got %s", msg.Type)
	}
	if string(msg.Data) != `{"id":"keep"}` {
		t.Errorf("Expected only the tiktok event, got %s", msg.Data)
	}
}
