// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"context"
	"fmt"

	"github.com/tomtom215/socialpulse/internal/config"
)

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg *config.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case "", config.StoreMemory:
		return NewMemory(), nil
	case config.StoreDuckDB:
		return OpenDuckDB(ctx, cfg)
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
