// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/models"
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateStore,
		c.validateIngest,
		c.validateQueue,
		c.validateRollup,
		c.validateSecurity,
		c.validatePollers,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535 (got %d)", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_BODY_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error (got %q)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console (got %q)", c.Logging.Format)
	}
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreMemory:
		return nil
	case StoreDuckDB:
		if c.Store.DuckDBPath == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORE_BACKEND=duckdb")
		}
		if c.Store.DuckDBThreads < 0 {
			return fmt.Errorf("DUCKDB_THREADS must not be negative")
		}
		return nil
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
		if c.Store.PostgresMaxConns < 1 {
			return fmt.Errorf("POSTGRES_MAX_CONNS must be at least 1")
		}
		return nil
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, duckdb, postgres (got %q)", c.Store.Backend)
	}
}

func (c *Config) validateIngest() error {
	if c.Ingest.AttributionTimeout <= 0 {
		return fmt.Errorf("ATTRIBUTION_TIMEOUT must be positive")
	}
	if c.Ingest.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1 (got %d)", c.Ingest.BatchConcurrency)
	}
	return nil
}

func (c *Config) validateQueue() error {
	switch c.Queue.Backend {
	case QueueChannel:
	case QueueNATS:
		if !c.Queue.Embedded && c.Queue.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when QUEUE_BACKEND=nats without an embedded server")
		}
		if c.Queue.Embedded && c.Queue.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
	default:
		return fmt.Errorf("QUEUE_BACKEND must be channel or nats (got %q)", c.Queue.Backend)
	}

	if c.Queue.Topic == "" {
		return fmt.Errorf("QUEUE_TOPIC is required")
	}
	if c.Queue.PoisonTopic == "" || c.Queue.PoisonTopic == c.Queue.Topic {
		return fmt.Errorf("QUEUE_POISON_TOPIC must be set and differ from QUEUE_TOPIC")
	}
	if c.Queue.BufferSize < 1 {
		return fmt.Errorf("QUEUE_BUFFER_SIZE must be at least 1")
	}
	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("QUEUE_MAX_RETRIES must not be negative")
	}
	return nil
}

func (c *Config) validateRollup() error {
	if c.Rollup.Enabled && c.Rollup.LedgerTTL <= 0 {
		return fmt.Errorf("ROLLUP_LEDGER_TTL must be positive when rollups are enabled")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validatePollers() error {
	for i, p := range c.Pollers {
		if _, ok := models.ParsePlatform(p.Platform); !ok {
			return fmt.Errorf("pollers[%d].platform %q is not a supported platform", i, p.Platform)
		}
		u, err := url.Parse(p.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("pollers[%d].url must be an absolute http(s) URL", i)
		}
		if p.Interval <= 0 {
			return fmt.Errorf("pollers[%d].interval must be positive", i)
		}
		if p.Source != "" && !models.Source(p.Source).IsValid() {
			return fmt.Errorf("pollers[%d].source %q is not a valid source", i, p.Source)
		}
	}
	return nil
}
