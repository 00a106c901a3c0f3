// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/socialpulse/internal/api"
	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/ingest"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/poller"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/supervisor"
	"github.com/tomtom215/socialpulse/internal/supervisor/services"
	"github.com/tomtom215/socialpulse/internal/webhook"
	ws "github.com/tomtom215/socialpulse/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("store", cfg.Store.Backend).
		Str("queue", cfg.Queue.Backend).
		Int("pollers", len(cfg.Pollers)).
		Msg("Starting SocialPulse")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open event store")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event store")
		}
	}()

	var hub *ws.Hub
	if cfg.Stream.Enabled {
		hub = ws.NewHub()
	}

	pipeline, err := InitPipeline(ctx, cfg, backend, hub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event pipeline")
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event pipeline")
		}
	}()

	resolver := ingest.NewResolver(backend, &cfg.Ingest, &cfg.Breaker)
	coordinator := ingest.NewCoordinator(backend, resolver, &cfg.Ingest,
		ingest.WithDispatcher(pipeline.Dispatcher()),
	)

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	pipeline.Supervise(tree)
	if hub != nil {
		tree.AddMessagingService(hub)
	}

	for i := range cfg.Pollers {
		p, err := poller.New(&cfg.Pollers[i], coordinator, &cfg.Breaker)
		if err != nil {
			logging.Fatal().Err(err).Str("platform", cfg.Pollers[i].Platform).Msg("Invalid poller configuration")
		}
		tree.AddMessagingService(p)
		logging.Info().
			Str("service", p.String()).
			Dur("interval", cfg.Pollers[i].Interval).
			Msg("Poller added to supervisor tree")
	}

	handler := api.NewHandler(coordinator, backend, backend, webhook.NewSet(webhookConfig(&cfg.Webhooks)), hub, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED on ingest and webhook routes")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("SocialPulse stopped")
}

func webhookConfig(cfg *config.WebhooksConfig) webhook.Config {
	return webhook.Config{
		TwitterConsumerSecret: cfg.TwitterConsumerSecret,
		MetaVerifyToken:       cfg.MetaVerifyToken,
		MetaAppSecret:         cfg.MetaAppSecret,
		TikTokClientSecret:    cfg.TikTokClientSecret,
		VerifySignatures:      cfg.VerifySignatures,
		TikTokTolerance:       cfg.TikTokTolerance,
	}
}
