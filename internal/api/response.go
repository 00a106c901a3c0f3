// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/logging"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError maps err through statusForError. Server-side faults are
// logged with the request's ids; client errors are not.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", logging.SanitizeValue(r.URL.Path)).
			Msg("Request failed")
	}
	respondJSON(w, status, body)
}

func respondBadRequest(w http.ResponseWriter, field, message string) {
	respondJSON(w, http.StatusBadRequest, ErrorBody{Error: ErrCodeBadRequest, Field: field, Message: message})
}
