// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package eventprocessor

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/socialpulse/internal/models"
)

// Message metadata keys.
const (
	MetadataPlatform   = "platform"
	MetadataEventType  = "event_type"
	MetadataAttributed = "attributed_user_id"
)

// NewEventMessage wraps an ingested event for the queue. The message UUID is
// the event id, which JetStream also uses as Nats-Msg-Id so a retried
// publish inside the duplicate window is stored once.
func NewEventMessage(e *models.Event) (*message.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.ID, err)
	}

	msg := message.NewMessage(e.ID, data)
	msg.Metadata.Set(MetadataPlatform, string(e.Platform))
	msg.Metadata.Set(MetadataEventType, string(e.Type))
	msg.Metadata.Set(MetadataAttributed, e.AttributedUserID)
	msg.Metadata.Set(natsgo.MsgIdHdr, e.ID)
	return msg, nil
}

// DecodeEvent reads the event carried by msg.
func DecodeEvent(msg *message.Message) (*models.Event, error) {
	var e models.Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event from message %s: %w", msg.UUID, err)
	}
	if e.ID == "" {
		return nil, fmt.Errorf("message %s carries an event without id", msg.UUID)
	}
	return &e, nil
}
