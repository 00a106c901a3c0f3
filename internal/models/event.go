// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package models

import (
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Actor is the account that performed the action.
type Actor struct {
	PlatformUserID string `json:"platform_user_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name,omitempty"`
	AvatarURL      string `json:"avatar_url,omitempty"`
}

// Subject is the content acted upon and the account that owns it.
type Subject struct {
	ContentID       string      `json:"content_id"`
	ContentType     ContentType `json:"content_type"`
	OwnerPlatformID string      `json:"owner_platform_id"`
}

// Metrics holds raw measurements. No derived weighting is ever stored here.
type Metrics struct {
	Count      int64    `json:"count"`
	DurationMS *int64   `json:"duration_ms,omitempty"`
	Value      *float64 `json:"value,omitempty"`
}

// Metadata describes how the event was collected.
type Metadata struct {
	Source     Source `json:"source"`
	IsVerified *bool  `json:"is_verified,omitempty"`
	RawEventID string `json:"raw_event_id,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
}

// Event is the canonical, immutable record of one action on one platform.
//
// Events are created exactly once by the ingestion coordinator through NewEvent
// and are never mutated afterwards. Stores hand out copies (see Clone), so a
// caller holding an *Event cannot alter what was persisted.
type Event struct {
	ID               string    `json:"id"`
	Type             EventType `json:"type"`
	Platform         Platform  `json:"platform"`
	Actor            Actor     `json:"actor"`
	Subject          Subject   `json:"subject"`
	Metrics          Metrics   `json:"metrics"`
	Metadata         Metadata  `json:"metadata"`
	Timestamp        time.Time `json:"timestamp"`
	IngestedAt       time.Time `json:"ingested_at"`
	AttributedUserID string    `json:"attributed_user_id,omitempty"`
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	if e.Metrics.DurationMS != nil {
		v := *e.Metrics.DurationMS
		c.Metrics.DurationMS = &v
	}
	if e.Metrics.Value != nil {
		v := *e.Metrics.Value
		c.Metrics.Value = &v
	}
	if e.Metadata.IsVerified != nil {
		v := *e.Metadata.IsVerified
		c.Metadata.IsVerified = &v
	}
	return &c
}

// DraftMetrics mirrors Metrics before validation. Count is left untyped so the
// validation engine can report a non-numeric count against its field path
// instead of failing the whole JSON decode.
type DraftMetrics struct {
	Count      any      `json:"count,omitempty"`
	DurationMS *int64   `json:"duration_ms,omitempty"`
	Value      *float64 `json:"value,omitempty"`
}

// Draft is a candidate event as produced by a normalizer or submitted over
// the wire. It carries no identity; id and ingested_at belong to the
// coordinator.
type Draft struct {
	Type      EventType     `json:"type"`
	Platform  Platform      `json:"platform"`
	Actor     *Actor        `json:"actor"`
	Subject   *Subject      `json:"subject"`
	Metrics   *DraftMetrics `json:"metrics"`
	Metadata  *Metadata     `json:"metadata"`
	Timestamp string        `json:"timestamp"`
}

// Identity is what the coordinator stamps onto a validated draft.
type Identity struct {
	ID               string
	IngestedAt       time.Time
	AttributedUserID string
}

// NewEvent builds an Event from a draft and the identity assigned to it.
//
// Only field shape and enum closure are checked here. Temporal bounds and
// batch rules belong to the validation engine, which runs first.
func NewEvent(d *Draft, id Identity) (*Event, error) {
	if d == nil {
		return nil, schemaErr("event", "draft is required")
	}
	if strings.TrimSpace(id.ID) == "" {
		return nil, schemaErr("id", "is required")
	}
	if id.IngestedAt.IsZero() {
		return nil, schemaErr("ingested_at", "is required")
	}
	if !d.Type.IsValid() {
		return nil, schemaErr("type", "must be one of: "+EnumValues(allEventTypes))
	}
	if !d.Platform.IsValid() {
		return nil, schemaErr("platform", "must be one of: "+EnumValues(allPlatforms))
	}
	if d.Actor == nil || d.Actor.PlatformUserID == "" {
		return nil, schemaErr("actor.platform_user_id", "is required")
	}
	if d.Actor.Username == "" {
		return nil, schemaErr("actor.username", "is required")
	}
	if d.Subject == nil || d.Subject.ContentID == "" {
		return nil, schemaErr("subject.content_id", "is required")
	}
	if !d.Subject.ContentType.IsValid() {
		return nil, schemaErr("subject.content_type", "must be one of: "+EnumValues(allContentTypes))
	}
	if d.Subject.OwnerPlatformID == "" {
		return nil, schemaErr("subject.owner_platform_id", "is required")
	}
	if d.Metadata == nil || !d.Metadata.Source.IsValid() {
		return nil, schemaErr("metadata.source", "must be one of: "+EnumValues(allSources))
	}

	metrics := Metrics{Count: 1}
	if d.Metrics != nil {
		if d.Metrics.Count != nil {
			n, ok := CountValue(d.Metrics.Count)
			if !ok || n < 0 {
				return nil, schemaErr("metrics.count", "must be a non-negative integer")
			}
			metrics.Count = n
		}
		metrics.DurationMS = d.Metrics.DurationMS
		metrics.Value = d.Metrics.Value
	}

	ts, err := ParseTimestamp(d.Timestamp)
	if err != nil {
		return nil, schemaErr("timestamp", "must be a valid ISO-8601 date")
	}

	e := &Event{
		ID:               id.ID,
		Type:             d.Type,
		Platform:         d.Platform,
		Actor:            *d.Actor,
		Subject:          *d.Subject,
		Metrics:          metrics,
		Metadata:         *d.Metadata,
		Timestamp:        ts.UTC(),
		IngestedAt:       id.IngestedAt.UTC(),
		AttributedUserID: id.AttributedUserID,
	}
	return e.Clone(), nil
}

// CountValue converts a decoded count into an integer. It accepts the numeric
// kinds produced by JSON decoding and by normalizers, and rejects fractional
// values and anything non-numeric.
func CountValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n >= 1<<63 || n < -(1<<63) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
