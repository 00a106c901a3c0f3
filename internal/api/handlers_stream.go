// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/models"
	ws "github.com/tomtom215/socialpulse/internal/websocket"
)

const registerTimeout = 5 * time.Second

// Stream handles GET /stream. The optional platform query parameter
// restricts the feed to one platform.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil || (h.config != nil && !h.config.Stream.Enabled) {
		respondJSON(w, http.StatusServiceUnavailable, ErrorBody{Error: ErrCodeUnavailable, Message: "event stream is disabled"})
		return
	}

	var platform models.Platform
	if raw := r.URL.Query().Get("platform"); raw != "" {
		p, ok := models.ParsePlatform(raw)
		if !ok {
			respondBadRequest(w, "platform", "platform must be one of: "+platformList())
			return
		}
		platform = p
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn, platform, h.pingInterval())
	select {
	case h.wsHub.Register <- client:
	case <-time.After(registerTimeout):
		logging.Ctx(r.Context()).Warn().Msg("WebSocket hub not accepting clients")
		_ = conn.Close()
		return
	}
	client.Start()

	logging.Ctx(r.Context()).Debug().
		Uint64("client_id", client.ID()).
		Str("platform", string(platform)).
		Msg("Stream client connected")
}
