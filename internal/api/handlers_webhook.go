// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/metrics"
	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/normalizer"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/webhook"
)

// Webhook handles GET and POST /webhooks/{platform}.
//
// GET requests are subscription handshakes and are answered entirely by the
// platform's verifier. POST deliveries are checked, split into items and
// ingested synchronously. Once a delivery passes verification it is always
// acknowledged with 200: an unparseable body and per-item failures are
// logged and counted, so platforms do not retry what will never succeed.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	platform, ok := models.ParsePlatform(chi.URLParam(r, "platform"))
	if !ok {
		respondBadRequest(w, "platform", "platform must be one of: "+platformList())
		return
	}
	verifier, ok := h.verifiers.For(platform)
	if !ok {
		respondBadRequest(w, "platform", "platform has no webhook support")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes()))
	if err != nil {
		respondJSON(w, http.StatusRequestEntityTooLarge, ErrorBody{Error: ErrCodeBadRequest, Message: "request body too large"})
		return
	}

	decision := verifier.Handle(webhook.Request{
		Method: r.Method,
		Query:  r.URL.Query(),
		Header: r.Header,
		Body:   body,
	})
	if !decision.Proceed {
		metrics.RecordWebhookRequest(string(platform), decision.State.String(), strconv.Itoa(decision.Status))
		if decision.Status >= http.StatusBadRequest {
			logging.Ctx(r.Context()).Warn().
				Str("platform", string(platform)).
				Str("state", decision.State.String()).
				Int("status", decision.Status).
				Msg("Webhook request rejected")
		}
		w.Header().Set("Content-Type", decision.ContentType)
		w.WriteHeader(decision.Status)
		_, _ = w.Write(decision.Body)
		return
	}

	items, err := splitWebhookBody(body)
	if err != nil {
		// Acknowledged so the platform does not redeliver a body that can
		// never be parsed.
		metrics.RecordWebhookItem(string(platform), "failed")
		metrics.RecordWebhookRequest(string(platform), decision.State.String(), strconv.Itoa(http.StatusOK))
		logging.Ctx(r.Context()).Warn().Err(err).
			Str("platform", string(platform)).
			Int("bytes", len(body)).
			Msg("Webhook body is not a JSON object or array")
		respondJSON(w, http.StatusOK, WebhookAck{})
		return
	}

	opts := normalizer.Options{
		Source:     models.SourceWebhook,
		ReceivedAt: time.Now().UTC(),
		UserAgent:  r.UserAgent(),
		IPAddress:  clientIP(r),
	}
	if decision.Verified {
		verified := true
		opts.Verified = &verified
	}

	ack := WebhookAck{Received: len(items)}
	for i, item := range items {
		_, err := h.ingester.IngestRaw(r.Context(), platform, item, opts)
		switch {
		case err == nil:
			ack.Accepted++
			metrics.RecordWebhookItem(string(platform), "accepted")
		case errors.Is(err, store.ErrDuplicateRawEvent):
			metrics.RecordWebhookItem(string(platform), "duplicate")
			logging.Ctx(r.Context()).Info().
				Str("platform", string(platform)).
				Int("item", i).
				Msg("Webhook item already ingested")
		default:
			metrics.RecordWebhookItem(string(platform), "failed")
			logging.Ctx(r.Context()).Warn().Err(err).
				Str("platform", string(platform)).
				Int("item", i).
				Msg("Webhook item not ingested")
		}
	}

	metrics.RecordWebhookRequest(string(platform), decision.State.String(), strconv.Itoa(http.StatusOK))
	respondJSON(w, http.StatusOK, ack)
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already replaced it with the forwarded address when one was sent.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func platformList() string {
	return strings.ReplaceAll(models.EnumValues(models.AllPlatforms()), " ", ", ")
}
