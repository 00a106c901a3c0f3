// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/validation"
)

// Ingest handles POST /ingest with one canonical draft.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var draft models.Draft
	if !h.decodeBody(w, r, &draft) {
		return
	}

	e, err := h.ingester.IngestOne(r.Context(), &draft)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, IngestResponse{
		EventID:    e.ID,
		IngestedAt: models.FormatTimestamp(e.IngestedAt),
	})
}

// IngestBatch handles POST /ingest/batch. A size violation rejects the
// whole request; otherwise every item lands in successful or failed.
func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	result, err := h.ingester.IngestBatch(r.Context(), req.Events)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := BatchResponse{
		Successful: result.Successful,
		Failed:     make([]BatchFailureBody, 0, len(result.Failed)),
	}
	for _, f := range result.Failed {
		_, body := statusForError(f.Error)
		resp.Failed = append(resp.Failed, BatchFailureBody{Index: f.Index, Draft: f.Draft, Error: body})
	}
	respondJSON(w, http.StatusCreated, resp)
}

// decodeBody reads a bounded JSON body. Unknown fields are tolerated;
// type mismatches are reported against the offending field.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			respondJSON(w, http.StatusRequestEntityTooLarge, ErrorBody{Error: ErrCodeBadRequest, Message: "request body too large"})
		case errors.As(err, &typeErr) && typeErr.Field != "":
			respondError(w, r, &validation.FieldError{Field: typeErr.Field, Message: typeErr.Field + " has the wrong type"})
		default:
			respondBadRequest(w, "body", "request body must be valid JSON")
		}
		return false
	}
	return true
}
