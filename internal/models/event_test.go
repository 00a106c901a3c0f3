// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func validDraft() *Draft {
	return &Draft{
		Type:      EventTypeEngagement,
		Platform:  PlatformInstagram,
		Actor:     &Actor{PlatformUserID: "u1", Username: "alice"},
		Subject:   &Subject{ContentID: "m1", ContentType: ContentTypeReel, OwnerPlatformID: "o1"},
		Metrics:   &DraftMetrics{Count: float64(3)},
		Metadata:  &Metadata{Source: SourceWebhook, RawEventID: "ig-1"},
		Timestamp: "2026-01-02T03:04:05Z",
	}
}

func testIdentity() Identity {
	return Identity{ID: "evt-1", IngestedAt: time.Date(2026, 1, 2, 4, 0, 0, 0, time.UTC)}
}

func TestNewEvent_Valid(t *testing.T) {
	t.Parallel()

	e, err := NewEvent(validDraft(), testIdentity())
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if e.ID != "evt-1" {
		t.Errorf("Expected ID evt-1, got %s", e.ID)
	}
	if e.Metrics.Count != 3 {
		t.Errorf("Expected count 3, got %d", e.Metrics.Count)
	}
	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if !e.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, e.Timestamp)
	}
	if e.Metadata.RawEventID != "ig-1" {
		t.Errorf("Expected raw_event_id ig-1, got %s", e.Metadata.RawEventID)
	}
}

func TestNewEvent_DefaultCount(t *testing.T) {
	t.Parallel()

	d := validDraft()
	d.Metrics = nil
	e, err := NewEvent(d, testIdentity())
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if e.Metrics.Count != 1 {
		t.Errorf("Expected default count 1, got %d", e.Metrics.Count)
	}
}

func TestNewEvent_SchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(d *Draft, id *Identity)
		wantPath string
	}{
		{"missing id", func(_ *Draft, id *Identity) { id.ID = "" }, "id"},
		{"missing ingested_at", func(_ *Draft, id *Identity) { id.IngestedAt = time.Time{} }, "ingested_at"},
		{"unknown type", func(d *Draft, _ *Identity) { d.Type = "invalid_type" }, "type"},
		{"unknown platform", func(d *Draft, _ *Identity) { d.Platform = "myspace" }, "platform"},
		{"missing actor", func(d *Draft, _ *Identity) { d.Actor = nil }, "actor.platform_user_id"},
		{"missing username", func(d *Draft, _ *Identity) { d.Actor.Username = "" }, "actor.username"},
		{"unknown content type", func(d *Draft, _ *Identity) { d.Subject.ContentType = "carousel" }, "subject.content_type"},
		{"missing owner", func(d *Draft, _ *Identity) { d.Subject.OwnerPlatformID = "" }, "subject.owner_platform_id"},
		{"unknown source", func(d *Draft, _ *Identity) { d.Metadata.Source = "rss" }, "metadata.source"},
		{"fractional count", func(d *Draft, _ *Identity) { d.Metrics.Count = 1.5 }, "metrics.count"},
		{"negative count", func(d *Draft, _ *Identity) { d.Metrics.Count = -1 }, "metrics.count"},
		{"bad timestamp", func(d *Draft, _ *Identity) { d.Timestamp = "yesterday" }, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := validDraft()
			id := testIdentity()
			tt.mutate(d, &id)

			_, err := NewEvent(d, id)
			if err == nil {
				t.Fatal("Expected schema violation, got nil")
			}
			if !errors.Is(err, ErrSchemaViolation) {
				t.Errorf("Expected ErrSchemaViolation, got %v", err)
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("Expected *SchemaError, got %T", err)
			}
			if se.Field != tt.wantPath {
				t.Errorf("Expected field %q, got %q", tt.wantPath, se.Field)
			}
		})
	}
}

func TestEvent_CloneIsDeep(t *testing.T) {
	t.Parallel()

	dur := int64(1500)
	verified := true
	e := &Event{
		ID:       "evt-1",
		Metrics:  Metrics{Count: 1, DurationMS: &dur},
		Metadata: Metadata{Source: SourceAPI, IsVerified: &verified},
	}

	c := e.Clone()
	*c.Metrics.DurationMS = 1
	*c.Metadata.IsVerified = false
	c.ID = "changed"

	if *e.Metrics.DurationMS != 1500 {
		t.Errorf("Clone shares DurationMS with original")
	}
	if !*e.Metadata.IsVerified {
		t.Errorf("Clone shares IsVerified with original")
	}
	if e.ID != "evt-1" {
		t.Errorf("Clone shares ID with original")
	}
}

func TestDraft_DecodeKeepsNonNumericCount(t *testing.T) {
	t.Parallel()

	var d Draft
	if err := json.Unmarshal([]byte(`{"metrics":{"count":"five"}}`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := CountValue(d.Metrics.Count); ok {
		t.Errorf("Expected string count to be rejected by CountValue")
	}
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Platform
		ok   bool
	}{
		{"twitter", PlatformTwitter, true},
		{"X", PlatformTwitter, true},
		{"Instagram", PlatformInstagram, true},
		{"ig", PlatformInstagram, true},
		{"threads", PlatformThreads, true},
		{"myspace", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParsePlatform(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePlatform(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2019, 5, 13, 19, 58, 58, 0, time.UTC)
	for _, in := range []string{
		"2019-05-13T19:58:58Z",
		"2019-05-13T19:58:58+0000",
		"2019-05-13T21:58:58+02:00",
		"2019-05-13T19:58:58",
	} {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error = %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseTimestamp("not a date"); err == nil {
		t.Error("Expected error for unparseable timestamp")
	}
	if _, err := ParseTimestamp(""); err == nil {
		t.Error("Expected error for empty timestamp")
	}
}

func TestCountValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     any
		want   int64
		wantOK bool
	}{
		{"int", 4, 4, true},
		{"whole float", float64(7), 7, true},
		{"fractional float", 1.5, 0, false},
		{"json number", json.Number("12"), 12, true},
		{"two to the 63", math.Pow(2, 63), 0, false},
		{"minus two to the 63", -math.Pow(2, 63), math.MinInt64, true},
		{"above int64", 1e19, 0, false},
		{"below int64", -1e19, 0, false},
		{"nan", math.NaN(), 0, false},
		{"infinity", math.Inf(1), 0, false},
		{"string", "3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := CountValue(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Expected ok=%v, got %v (value %d)", tt.wantOK, ok, got)
			}
			if ok && got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}
