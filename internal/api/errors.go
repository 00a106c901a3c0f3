// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/normalizer"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/validation"
)

// Error codes carried in the "error" field of error bodies.
const (
	ErrCodeValidation      = "ValidationError"
	ErrCodeSchema          = "SchemaViolation"
	ErrCodeNormalization   = "NormalizationError"
	ErrCodeImmutability    = "ImmutabilityViolation"
	ErrCodeNotFound        = "NotFound"
	ErrCodeDuplicateRaw    = "DuplicateRawEvent"
	ErrCodeStorage         = "StorageFailure"
	ErrCodeBadRequest      = "BadRequest"
	ErrCodeTooManyRequests = "TooManyRequests"
	ErrCodeUnavailable     = "ServiceUnavailable"
)

// ErrorBody is the JSON shape of every error response. Field is set for
// client-attributable input failures.
type ErrorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// statusForError is the single place an error becomes an HTTP status.
// Storage faults never leak their cause to the client.
func statusForError(err error) (int, ErrorBody) {
	var (
		fieldErr  *validation.FieldError
		schemaErr *models.SchemaError
		normErr   *normalizer.Error
	)

	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, ErrorBody{Error: ErrCodeValidation, Field: fieldErr.Field, Message: fieldErr.Message}
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, ErrorBody{Error: ErrCodeSchema, Field: schemaErr.Field, Message: schemaErr.Error()}
	case errors.As(err, &normErr):
		return http.StatusBadRequest, ErrorBody{Error: ErrCodeNormalization, Field: normErr.Field, Message: normErr.Error()}
	case errors.Is(err, validation.ErrValidation):
		return http.StatusBadRequest, ErrorBody{Error: ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, store.ErrImmutabilityViolation):
		return http.StatusForbidden, ErrorBody{Error: ErrCodeImmutability, Message: "events are immutable and cannot be updated or deleted"}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Error: ErrCodeNotFound, Message: "event not found"}
	case errors.Is(err, store.ErrDuplicateRawEvent):
		return http.StatusConflict, ErrorBody{Error: ErrCodeDuplicateRaw, Message: "an event with this platform and raw_event_id already exists"}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: ErrCodeStorage, Message: "a storage error occurred"}
	}
}
