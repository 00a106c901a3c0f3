// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package poller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/eventprocessor"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/metrics"
	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/normalizer"
	"github.com/tomtom215/socialpulse/internal/store"
)

// maxResponseBytes caps one poll response.
const maxResponseBytes = 8 << 20

const defaultTimeout = 30 * time.Second

// Ingester accepts one raw platform payload. *ingest.Coordinator
// implements it.
type Ingester interface {
	IngestRaw(ctx context.Context, platform models.Platform, raw []byte, opts normalizer.Options) (*models.Event, error)
}

// PollResult summarizes one pull.
type PollResult struct {
	Received   int
	Accepted   int
	Duplicates int
	Failed     int
}

// Poller periodically pulls activity from one platform API endpoint and
// feeds each item through normalization and ingestion. Items already seen
// are rejected by the store's raw event id constraint and counted as
// duplicates, so overlapping pulls are harmless.
type Poller struct {
	platform models.Platform
	source   models.Source
	url      string
	token    string

	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[[]byte]
	ingester Ingester
	logger   zerolog.Logger
}

// New builds a poller from cfg. The limiter allows one pull per interval.
func New(cfg *config.PollerConfig, ingester Ingester, breakerCfg *config.BreakerConfig) (*Poller, error) {
	platform, ok := models.ParsePlatform(cfg.Platform)
	if !ok {
		return nil, fmt.Errorf("poller platform %q is not supported", cfg.Platform)
	}
	if ingester == nil {
		return nil, fmt.Errorf("ingester required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("poller %s: interval must be positive", platform)
	}

	source := models.Source(cfg.Source)
	if source == "" {
		source = models.SourceAPI
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Poller{
		platform: platform,
		source:   source,
		url:      cfg.URL,
		token:    cfg.BearerToken,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(cfg.Interval), 1),
		breaker:  eventprocessor.NewCircuitBreaker[[]byte]("poller-"+string(platform), breakerCfg),
		ingester: ingester,
		logger:   logging.WithComponent("poller").With().Str("platform", string(platform)).Logger(),
	}, nil
}

// Serve polls until ctx is canceled. The first pull happens immediately.
// It satisfies suture.Service.
func (p *Poller) Serve(ctx context.Context) error {
	p.logger.Info().Str("url", logging.SanitizeValue(p.url)).Msg("Starting poller")
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("poller %s: %w", p.platform, err)
		}
		if _, err := p.Poll(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("Poll failed")
		}
	}
}

func (p *Poller) String() string {
	return "poller-" + string(p.platform)
}

// Poll performs one pull and ingests every item it returns.
func (p *Poller) Poll(ctx context.Context) (*PollResult, error) {
	body, err := p.breaker.Execute(func() ([]byte, error) {
		return p.fetch(ctx)
	})
	if err != nil {
		metrics.RecordPoll(string(p.platform), err)
		return nil, err
	}

	items, err := splitItems(body)
	if err != nil {
		metrics.RecordPoll(string(p.platform), err)
		return nil, err
	}

	result := &PollResult{Received: len(items)}
	verified := true
	opts := normalizer.Options{Source: p.source, ReceivedAt: time.Now().UTC(), Verified: &verified}
	for _, raw := range items {
		_, err := p.ingester.IngestRaw(ctx, p.platform, raw, opts)
		switch {
		case err == nil:
			result.Accepted++
		case errors.Is(err, store.ErrDuplicateRawEvent):
			result.Duplicates++
		default:
			result.Failed++
			p.logger.Warn().Err(err).Msg("Polled item rejected")
		}
	}

	metrics.RecordPoll(string(p.platform), nil)
	p.logger.Debug().
		Int("received", result.Received).
		Int("accepted", result.Accepted).
		Int("duplicates", result.Duplicates).
		Int("failed", result.Failed).
		Msg("Poll complete")
	return result, nil
}

func (p *Poller) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: unexpected status %d", p.platform, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", p.platform, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%s response exceeds %d bytes", p.platform, maxResponseBytes)
	}
	return body, nil
}

// splitItems accepts a bare array, an envelope with a "data" array (the
// shape Graph and v2 APIs use), or a single object.
func splitItems(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode item array: %w", err)
		}
		return items, nil
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if d := bytes.TrimSpace(envelope.Data); len(d) > 0 && d[0] == '[' {
			return splitItems(d)
		}
		return []json.RawMessage{trimmed}, nil
	default:
		return nil, fmt.Errorf("response is not a JSON object or array")
	}
}
