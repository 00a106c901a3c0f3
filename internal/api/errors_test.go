// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/normalizer"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/validation"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"field error", &validation.FieldError{Field: "timestamp", Message: "timestamp cannot be in the future"}, http.StatusBadRequest, ErrCodeValidation, "timestamp"},
		{"wrapped field error", fmt.Errorf("batch: %w", &validation.FieldError{Field: "events", Message: "x"}), http.StatusBadRequest, ErrCodeValidation, "events"},
		{"schema error", &models.SchemaError{Field: "id", Message: "is required"}, http.StatusBadRequest, ErrCodeSchema, "id"},
		{"normalization error", &normalizer.Error{Platform: models.PlatformTikTok, Field: "video", Message: "is required"}, http.StatusBadRequest, ErrCodeNormalization, "video"},
		{"immutability", store.ErrImmutabilityViolation, http.StatusForbidden, ErrCodeImmutability, ""},
		{"not found", fmt.Errorf("get: %w", store.ErrNotFound), http.StatusNotFound, ErrCodeNotFound, ""},
		{"duplicate raw event", fmt.Errorf("persist event: %w", store.ErrDuplicateRawEvent), http.StatusConflict, ErrCodeDuplicateRaw, ""},
		{"duplicate id", store.ErrDuplicateEvent, http.StatusInternalServerError, ErrCodeStorage, ""},
		{"anything else", errors.New("pq: connection refused on 10.0.0.3"), http.StatusInternalServerError, ErrCodeStorage, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, body := statusForError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, status)
			}
			if body.Error != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, body.Error)
			}
			if body.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, body.Field)
			}
		})
	}
}

func TestStatusForError_StorageCauseNotLeaked(t *testing.T) {
	t.Parallel()

	_, body := statusForError(errors.New("duckdb: disk I/O error at /var/lib/socialpulse"))
	if strings.Contains(body.Message, "duckdb") || strings.Contains(body.Message, "/var/lib") {
		t.Errorf("Expected a generic message, got %q", body.Message)
	}
}
