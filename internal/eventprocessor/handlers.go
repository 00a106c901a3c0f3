// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package eventprocessor

import (
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/socialpulse/internal/models"
)

// Broadcaster pushes an encoded event to live stream clients.
type Broadcaster interface {
	Broadcast(platform models.Platform, payload []byte)
}

// StreamHandler forwards queue messages to the websocket hub.
type StreamHandler struct {
	hub Broadcaster

	received  atomic.Int64
	broadcast atomic.Int64
}

// NewStreamHandler creates a handler feeding hub.
func NewStreamHandler(hub Broadcaster) (*StreamHandler, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	return &StreamHandler{hub: hub}, nil
}

// Handle never fails: a slow or absent listener must not send messages
// through retries or into the poison queue.
func (h *StreamHandler) Handle(msg *message.Message) error {
	h.received.Add(1)
	platform := models.Platform(msg.Metadata.Get(MetadataPlatform))
	h.hub.Broadcast(platform, msg.Payload)
	h.broadcast.Add(1)
	return nil
}

// StreamHandlerStats holds runtime counters.
type StreamHandlerStats struct {
	MessagesReceived  int64
	MessagesBroadcast int64
}

// Stats returns current counters.
func (h *StreamHandler) Stats() StreamHandlerStats {
	return StreamHandlerStats{
		MessagesReceived:  h.received.Load(),
		MessagesBroadcast: h.broadcast.Load(),
	}
}
