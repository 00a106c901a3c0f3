// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/socialpulse/internal/models"
)

// ErrNormalization is matched by every *Error.
var ErrNormalization = errors.New("normalization failed")

// Error reports a raw payload that cannot be mapped into a draft. It is
// always client-attributable.
type Error struct {
	Platform models.Platform
	Field    string
	Message  string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s payload: %s", e.Platform, e.Message)
	}
	return fmt.Sprintf("%s payload: %s: %s", e.Platform, e.Field, e.Message)
}

// Is lets errors.Is(err, ErrNormalization) match.
func (e *Error) Is(target error) bool {
	return target == ErrNormalization
}

// Options carries what the caller knows about where a payload came from.
type Options struct {
	// Source is stamped into metadata.source. Defaults to api.
	Source models.Source

	// ReceivedAt stands in for the event time when the payload has none.
	// Defaults to time.Now.
	ReceivedAt time.Time

	// Verified is copied to metadata.is_verified when set, e.g. after a
	// webhook signature check.
	Verified *bool

	UserAgent string
	IPAddress string
}

func (o Options) withDefaults() Options {
	if o.Source == "" {
		o.Source = models.SourceAPI
	}
	if o.ReceivedAt.IsZero() {
		o.ReceivedAt = time.Now()
	}
	return o
}

// Normalizer translates one platform's raw payload into a draft event.
// Implementations never assign id or ingested_at.
type Normalizer interface {
	Platform() models.Platform
	Normalize(raw []byte, opts Options) (*models.Draft, error)
}

// For returns the normalizer for p. The set of variants is closed and
// selected only by the platform enumeration.
func For(p models.Platform) (Normalizer, error) {
	switch p {
	case models.PlatformTwitter:
		return twitterNormalizer{}, nil
	case models.PlatformInstagram:
		return instagramNormalizer{}, nil
	case models.PlatformTikTok:
		return tiktokNormalizer{}, nil
	case models.PlatformYouTube:
		return youtubeNormalizer{}, nil
	case models.PlatformFacebook:
		return facebookNormalizer{}, nil
	case models.PlatformThreads:
		return threadsNormalizer{}, nil
	default:
		return nil, &Error{Platform: p, Field: "platform", Message: "unsupported platform"}
	}
}

// Normalize is shorthand for For(p) followed by Normalize.
func Normalize(p models.Platform, raw []byte, opts Options) (*models.Draft, error) {
	n, err := For(p)
	if err != nil {
		return nil, err
	}
	return n.Normalize(raw, opts)
}

// lookupTable maps a platform-native label onto a canonical value. Keys are
// lower case; lookups fold case and trim space.
type lookupTable[T ~string] map[string]T

func (t lookupTable[T]) resolve(label string, fallback T) T {
	if v, ok := t[strings.ToLower(strings.TrimSpace(label))]; ok {
		return v
	}
	return fallback
}

// draftParts is what every variant extracts before the shared assembly step.
type draftParts struct {
	eventType   models.EventType
	contentType models.ContentType
	actor       models.Actor
	contentID   string
	ownerID     string
	timestamp   []byte
	count       any
	durationMS  *int64
	value       *float64
	rawEventID  string
}

func assemble(p models.Platform, parts draftParts, opts Options) *models.Draft {
	opts = opts.withDefaults()

	actor := parts.actor
	return &models.Draft{
		Type:     parts.eventType,
		Platform: p,
		Actor:    &actor,
		Subject: &models.Subject{
			ContentID:       parts.contentID,
			ContentType:     parts.contentType,
			OwnerPlatformID: parts.ownerID,
		},
		Metrics: &models.DraftMetrics{
			Count:      parts.count,
			DurationMS: parts.durationMS,
			Value:      parts.value,
		},
		Metadata: &models.Metadata{
			Source:     opts.Source,
			IsVerified: opts.Verified,
			RawEventID: parts.rawEventID,
			UserAgent:  opts.UserAgent,
			IPAddress:  opts.IPAddress,
		},
		Timestamp: eventTime(parts.timestamp, opts.ReceivedAt),
	}
}

func missing(p models.Platform, field string) error {
	return &Error{Platform: p, Field: field, Message: "object is missing"}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
