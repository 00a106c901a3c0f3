// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/socialpulse/internal/models"
)

// MaxBatchSize is the largest batch accepted by ingestBatch.
const MaxBatchSize = 1000

// ErrBatchSize is wrapped by the error ValidateBatchSize returns.
var ErrBatchSize = fmt.Errorf("%w: batch size out of range", ErrValidation)

var (
	eventTypeTag   = "omitempty,oneof=" + models.EnumValues(models.AllEventTypes())
	platformTag    = "omitempty,oneof=" + models.EnumValues(models.AllPlatforms())
	contentTypeTag = "omitempty,oneof=" + models.EnumValues(models.AllContentTypes())
	sourceTag      = "omitempty,oneof=" + models.EnumValues(models.AllSources())
)

// ValidateDraft checks a draft in a fixed order and returns on the first
// failure:
//
//  1. presence of the seven top-level fields
//  2. enum membership of type, platform, subject.content_type, metadata.source
//  3. nested required fields, including a numeric metrics.count
//  4. timestamp parseability and the [now-1y, now] window
//
// On success it returns a copy with metrics.count defaulted to 1 and the
// timestamp rewritten in canonical RFC 3339 form. The input is not modified.
func ValidateDraft(d *models.Draft, now time.Time) (*models.Draft, error) {
	if d == nil {
		return nil, fieldErr("event", "event is required")
	}

	if fe := checkPresence(d); fe != nil {
		return nil, fe
	}
	if fe := checkEnums(d); fe != nil {
		return nil, fe
	}
	count, fe := checkNested(d)
	if fe != nil {
		return nil, fe
	}
	ts, fe := checkTimestamp(d.Timestamp, now)
	if fe != nil {
		return nil, fe
	}

	out := *d
	actor := *d.Actor
	subject := *d.Subject
	metadata := *d.Metadata
	out.Actor = &actor
	out.Subject = &subject
	out.Metadata = &metadata
	out.Metrics = &models.DraftMetrics{
		Count:      count,
		DurationMS: d.Metrics.DurationMS,
		Value:      d.Metrics.Value,
	}
	out.Timestamp = models.FormatTimestamp(ts)
	return &out, nil
}

// PrefilterDraft is the cheap batch pre-check: only the seven top-level
// fields are tested for presence.
func PrefilterDraft(d *models.Draft) error {
	if d == nil {
		return fieldErr("event", "event is required")
	}
	if fe := checkPresence(d); fe != nil {
		return fe
	}
	return nil
}

// ValidateBatchSize enforces 1 <= n <= MaxBatchSize.
func ValidateBatchSize(n int) error {
	if n < 1 || n > MaxBatchSize {
		return fmt.Errorf("%w: %w", ErrBatchSize,
			fieldErr("events", "events must contain between 1 and %d items, got %d", MaxBatchSize, n))
	}
	return nil
}

// checkPresence treats a nil nested object as a false flag so the same
// required tag covers strings and objects.
func checkPresence(d *models.Draft) *FieldError {
	checks := []struct {
		field string
		value any
	}{
		{"type", strings.TrimSpace(string(d.Type))},
		{"platform", strings.TrimSpace(string(d.Platform))},
		{"actor", d.Actor != nil},
		{"subject", d.Subject != nil},
		{"metrics", d.Metrics != nil},
		{"metadata", d.Metadata != nil},
		{"timestamp", strings.TrimSpace(d.Timestamp)},
	}
	for _, c := range checks {
		if fe := checkVar(c.field, c.value, "required"); fe != nil {
			return fe
		}
	}
	return nil
}

func checkEnums(d *models.Draft) *FieldError {
	checks := []struct {
		field string
		value string
		tag   string
	}{
		{"type", string(d.Type), eventTypeTag},
		{"platform", string(d.Platform), platformTag},
		{"subject.content_type", string(d.Subject.ContentType), contentTypeTag},
		{"metadata.source", string(d.Metadata.Source), sourceTag},
	}
	for _, c := range checks {
		if fe := checkVar(c.field, c.value, c.tag); fe != nil {
			return fe
		}
	}
	return nil
}

func checkNested(d *models.Draft) (int64, *FieldError) {
	required := []struct {
		field string
		value string
	}{
		{"actor.platform_user_id", d.Actor.PlatformUserID},
		{"actor.username", d.Actor.Username},
		{"subject.content_id", d.Subject.ContentID},
		{"subject.content_type", string(d.Subject.ContentType)},
		{"subject.owner_platform_id", d.Subject.OwnerPlatformID},
	}
	for _, r := range required {
		if fe := checkVar(r.field, strings.TrimSpace(r.value), "required"); fe != nil {
			return 0, fe
		}
	}

	count := int64(1)
	if d.Metrics.Count != nil {
		n, ok := models.CountValue(d.Metrics.Count)
		if !ok {
			if _, isString := d.Metrics.Count.(string); isString {
				return 0, fieldErr("metrics.count", "metrics.count must be a number")
			}
			if _, isBool := d.Metrics.Count.(bool); isBool {
				return 0, fieldErr("metrics.count", "metrics.count must be a number")
			}
			return 0, fieldErr("metrics.count", "metrics.count must be a non-negative integer")
		}
		if n < 0 {
			return 0, fieldErr("metrics.count", "metrics.count must be a non-negative integer")
		}
		count = n
	}

	if fe := checkVar("metadata.source", strings.TrimSpace(string(d.Metadata.Source)), "required"); fe != nil {
		return 0, fe
	}
	return count, nil
}

func checkTimestamp(raw string, now time.Time) (time.Time, *FieldError) {
	ts, err := models.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, fieldErr("timestamp", "timestamp must be a valid ISO-8601 date")
	}
	if ts.After(now) {
		return time.Time{}, fieldErr("timestamp", "timestamp cannot be in the future")
	}
	if ts.Before(now.AddDate(-1, 0, 0)) {
		return time.Time{}, fieldErr("timestamp", "timestamp must be within the last year")
	}
	return ts, nil
}
