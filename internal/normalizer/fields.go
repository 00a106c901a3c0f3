// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
)

// flexString accepts a JSON string or number. Platform ids are numeric in
// some APIs and strings in others.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

// isAbsent reports whether a raw field was omitted or sent as null.
func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// twitterTimeLayout is the v1.1 created_at rendering.
const twitterTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// millisThreshold separates Unix seconds from Unix milliseconds. Second
// values this large are thousands of years away.
const millisThreshold = 1e12

// eventTime renders a raw timestamp as an ISO-8601 string. Absent values fall
// back to receivedAt. Unparseable strings pass through untouched so the
// validation engine rejects them against the timestamp field.
func eventTime(raw []byte, receivedAt time.Time) string {
	if isAbsent(raw) {
		return models.FormatTimestamp(receivedAt)
	}
	raw = bytes.TrimSpace(raw)

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return models.FormatTimestamp(receivedAt)
		}
		if t, ok := parseTimeString(s); ok {
			return models.FormatTimestamp(t)
		}
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return string(raw)
	}
	return models.FormatTimestamp(fromEpoch(n))
}

func parseTimeString(s string) (time.Time, bool) {
	if t, err := models.ParseTimestamp(s); err == nil {
		return t, true
	}
	for _, layout := range []string{twitterTimeLayout, time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n), true
	}
	return time.Time{}, false
}

func fromEpoch(n float64) time.Time {
	if math.Abs(n) >= millisThreshold {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// decodeObject unmarshals raw into v, insisting on a JSON object.
func decodeObject(p models.Platform, raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &Error{Platform: p, Message: "payload must be a JSON object"}
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return &Error{Platform: p, Message: "malformed payload: " + err.Error()}
	}
	return nil
}
