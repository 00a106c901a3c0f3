// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/socialpulse/internal/cache"
	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/eventprocessor"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/metrics"
	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/store"
)

// Attribution outcomes, as exported in socialpulse_attribution_lookups_total.
const (
	attributionHit         = "hit"
	attributionMiss        = "miss"
	attributionCached      = "cached"
	attributionTimeout     = "timeout"
	attributionError       = "error"
	attributionBreakerOpen = "breaker_open"
)

type ownerKey struct {
	platform models.Platform
	ownerID  string
}

type ownerLookup struct {
	userID string
	found  bool
}

// Resolver maps (platform, owner_platform_id) to an internal user id.
//
// Lookups go through an LRU (which also remembers misses), then a circuit
// breaker, then the directory under a deadline. Every failure mode resolves
// to "no attribution"; Resolve never returns an error.
type Resolver struct {
	directory store.Directory
	cache     *cache.LRU[ownerKey, ownerLookup]
	breaker   *gobreaker.CircuitBreaker[ownerLookup]
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewResolver builds a resolver over directory. A nil directory resolves
// nothing.
func NewResolver(directory store.Directory, cfg *config.IngestConfig, breakerCfg *config.BreakerConfig) *Resolver {
	timeout := cfg.AttributionTimeout
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &Resolver{
		directory: directory,
		cache:     cache.NewLRU[ownerKey, ownerLookup](cfg.AttributionCacheSize, cfg.AttributionCacheTTL),
		breaker:   eventprocessor.NewCircuitBreaker[ownerLookup]("attribution", breakerCfg),
		timeout:   timeout,
		logger:    logging.WithComponent("attribution"),
	}
}

// Resolve returns the owning user id, or "" when the owner is unknown or
// the directory could not answer in time.
func (r *Resolver) Resolve(ctx context.Context, platform models.Platform, ownerID string) string {
	if r == nil || r.directory == nil || ownerID == "" {
		return ""
	}

	key := ownerKey{platform, ownerID}
	if cached, ok := r.cache.Get(key); ok {
		metrics.RecordCache("attribution", true)
		metrics.RecordAttribution(attributionCached)
		return cached.userID
	}
	metrics.RecordCache("attribution", false)

	result, err := r.breaker.Execute(func() (ownerLookup, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		userID, found, err := r.directory.LookupOwner(lookupCtx, platform, ownerID)
		if err != nil {
			return ownerLookup{}, err
		}
		return ownerLookup{userID: userID, found: found}, nil
	})

	if err != nil {
		outcome := attributionError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = attributionBreakerOpen
		case errors.Is(err, context.DeadlineExceeded):
			outcome = attributionTimeout
		}
		metrics.RecordAttribution(outcome)
		r.logger.Warn().Err(err).
			Str("request_id", logging.RequestIDFromContext(ctx)).
			Str("platform", string(platform)).
			Str("owner_platform_id", ownerID).
			Str("outcome", outcome).
			Msg("Owner attribution unavailable, continuing unattributed")
		return ""
	}

	r.cache.Add(key, result)
	if !result.found {
		metrics.RecordAttribution(attributionMiss)
		r.logger.Debug().
			Str("platform", string(platform)).
			Str("owner_platform_id", ownerID).
			Msg("No linked account for owner")
		return ""
	}
	metrics.RecordAttribution(attributionHit)
	return result.userID
}

// Forget drops a cached answer, used after an account is linked.
func (r *Resolver) Forget(platform models.Platform, ownerID string) {
	if r == nil {
		return
	}
	r.cache.Remove(ownerKey{platform, ownerID})
}
