// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/store"
)

// GetEvent handles GET /{eventId}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Get(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// ListByPlatform handles GET /platform/{platform}, newest first.
func (h *Handler) ListByPlatform(w http.ResponseWriter, r *http.Request) {
	platform, ok := models.ParsePlatform(chi.URLParam(r, "platform"))
	if !ok {
		respondBadRequest(w, "platform", "platform must be one of: "+platformList())
		return
	}

	q, fe := parsePlatformQuery(r, platform)
	if fe != nil {
		respondError(w, r, fe)
		return
	}

	page, err := h.events.ListByPlatform(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, EventsPage{
		Events: page.Events,
		Pagination: PaginationBody{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// RejectMutation handles PUT, PATCH and DELETE on /{eventId}. The request
// is still routed through the store so the refusal comes from the same
// place for every caller.
func (h *Handler) RejectMutation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventId")
	var err error
	if r.Method == http.MethodDelete {
		err = h.events.Delete(r.Context(), id)
	} else {
		err = h.events.Update(r.Context(), id, nil)
	}
	if err == nil {
		err = store.ErrImmutabilityViolation
	}
	respondError(w, r, err)
}

// GetRollup handles GET /rollups/{userId}.
func (h *Handler) GetRollup(w http.ResponseWriter, r *http.Request) {
	if h.rollups == nil {
		respondJSON(w, http.StatusServiceUnavailable, ErrorBody{Error: ErrCodeUnavailable, Message: "rollups are disabled"})
		return
	}
	summary, err := h.rollups.GetRollup(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
