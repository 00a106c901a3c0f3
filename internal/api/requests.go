// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/validation"
)

// PlatformQueryParams are the validated query parameters of
// GET /platform/{platform}.
type PlatformQueryParams struct {
	Limit int `query:"limit" validate:"min=1,max=1000"`
	Page  int `query:"page" validate:"min=1"`
}

// BatchRequest is the body of POST /ingest/batch.
type BatchRequest struct {
	Events []*models.Draft `json:"events"`
}

// IngestResponse is returned by POST /ingest.
type IngestResponse struct {
	EventID    string `json:"event_id"`
	IngestedAt string `json:"ingested_at"`
}

// BatchFailureBody is one entry of the batch "failed" list.
type BatchFailureBody struct {
	Index int           `json:"index"`
	Draft *models.Draft `json:"draft"`
	Error ErrorBody     `json:"error"`
}

// BatchResponse is returned by POST /ingest/batch.
type BatchResponse struct {
	Successful []string           `json:"successful"`
	Failed     []BatchFailureBody `json:"failed"`
}

// PaginationBody describes one page of a listing.
type PaginationBody struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// EventsPage is returned by GET /platform/{platform}.
type EventsPage struct {
	Events     []*models.Event `json:"events"`
	Pagination PaginationBody  `json:"pagination"`
}

// WebhookAck is the body of every accepted webhook delivery.
type WebhookAck struct {
	Received int `json:"received"`
	Accepted int `json:"accepted"`
}

// getIntParam returns def when key is absent and ok=false when it is
// present but not an integer.
func getIntParam(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parsePlatformQuery reads and validates the listing filters. A date-only
// endDate covers the whole day.
func parsePlatformQuery(r *http.Request, platform models.Platform) (store.PlatformQuery, *validation.FieldError) {
	limit, ok := getIntParam(r, "limit", store.DefaultLimit)
	if !ok {
		return store.PlatformQuery{}, &validation.FieldError{Field: "limit", Message: "limit must be an integer"}
	}
	page, ok := getIntParam(r, "page", 1)
	if !ok {
		return store.PlatformQuery{}, &validation.FieldError{Field: "page", Message: "page must be an integer"}
	}

	params := PlatformQueryParams{Limit: limit, Page: page}
	if verr := validation.ValidateStruct(&params); verr != nil {
		return store.PlatformQuery{}, verr.First()
	}

	q := store.PlatformQuery{Platform: platform, Limit: params.Limit, Page: params.Page}

	if raw := r.URL.Query().Get("startDate"); raw != "" {
		t, err := models.ParseTimestamp(raw)
		if err != nil {
			return store.PlatformQuery{}, &validation.FieldError{Field: "startDate", Message: "startDate must be a valid ISO-8601 date"}
		}
		q.Start = &t
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		t, err := models.ParseTimestamp(raw)
		if err != nil {
			return store.PlatformQuery{}, &validation.FieldError{Field: "endDate", Message: "endDate must be a valid ISO-8601 date"}
		}
		if isDateOnly(raw) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		q.End = &t
	}
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		return store.PlatformQuery{}, &validation.FieldError{Field: "endDate", Message: "endDate must not be before startDate"}
	}
	return q, nil
}

func isDateOnly(s string) bool {
	return len(strings.TrimSpace(s)) == len("2006-01-02")
}

var errInvalidWebhookBody = errors.New("webhook body is not valid JSON")

// splitWebhookBody accepts one JSON object or an array of objects.
func splitWebhookBody(body []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, errInvalidWebhookBody
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}
