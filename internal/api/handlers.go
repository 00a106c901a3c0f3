// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/ingest"
	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/normalizer"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/webhook"
	ws "github.com/tomtom215/socialpulse/internal/websocket"
)

// Ingester is the write side used by the handlers. *ingest.Coordinator
// implements it.
type Ingester interface {
	IngestOne(ctx context.Context, d *models.Draft) (*models.Event, error)
	IngestBatch(ctx context.Context, drafts []*models.Draft) (*ingest.BatchResult, error)
	IngestRaw(ctx context.Context, platform models.Platform, raw []byte, opts normalizer.Options) (*models.Event, error)
}

// Handler holds the dependencies of every route.
//
// Handler methods are split across files:
//   - handlers_ingest.go: POST /ingest, POST /ingest/batch
//   - handlers_events.go: reads, refused mutations, rollups
//   - handlers_webhook.go: GET|POST /webhooks/{platform}
//   - handlers_stream.go: GET /stream
type Handler struct {
	ingester  Ingester
	events    store.EventStore
	rollups   store.RollupStore
	verifiers *webhook.Set
	wsHub     *ws.Hub
	config    *config.Config
}

// NewHandler wires a handler. rollups and hub may be nil, which disables
// GET /rollups/{userId} and GET /stream respectively.
func NewHandler(ingester Ingester, events store.EventStore, rollups store.RollupStore, verifiers *webhook.Set, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		ingester:  ingester,
		events:    events,
		rollups:   rollups,
		verifiers: verifiers,
		wsHub:     hub,
		config:    cfg,
	}
}

func (h *Handler) maxBodyBytes() int64 {
	if h.config != nil && h.config.Server.MaxBodyBytes > 0 {
		return h.config.Server.MaxBodyBytes
	}
	return 10 << 20
}

func (h *Handler) pingInterval() time.Duration {
	if h.config != nil {
		return h.config.Stream.PingInterval
	}
	return 0
}

// getUpgrader allows any origin: /stream carries no credentials and CORS
// is handled in front of this service.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		CheckOrigin:      func(*http.Request) bool { return true },
		HandshakeTimeout: 10 * time.Second,
	}
}
