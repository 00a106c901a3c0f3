// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/socialpulse/config.yaml",
	"/etc/socialpulse/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3857,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend:          StoreMemory,
			DuckDBPath:       "/data/socialpulse.duckdb",
			DuckDBMaxMemory:  "1GB",
			PostgresMaxConns: 10,
		},
		Ingest: IngestConfig{
			AttributionTimeout:   250 * time.Millisecond,
			AttributionCacheSize: 10000,
			AttributionCacheTTL:  5 * time.Minute,
			BatchConcurrency:     16,
		},
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Queue: QueueConfig{
			Backend:         QueueChannel,
			NATSURL:         "nats://127.0.0.1:4222",
			StoreDir:        "/data/nats/jetstream",
			StreamName:      "SOCIALPULSE",
			Durable:         "rollup",
			Topic:           "events.ingested",
			PoisonTopic:     "events.ingested.poison",
			BufferSize:      1024,
			MaxRetries:      5,
			RetryInterval:   100 * time.Millisecond,
			PublishTimeout:  5 * time.Second,
			CloseTimeout:    10 * time.Second,
			SubscriberCount: 1,
		},
		Rollup: RollupConfig{
			Enabled:    true,
			LedgerTTL:  7 * 24 * time.Hour,
			LedgerSize: 100000,
		},
		Webhooks: WebhooksConfig{
			TikTokTolerance: 5 * time.Minute,
		},
		Security: SecurityConfig{
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
		},
		Stream: StreamConfig{
			Enabled:      true,
			PingInterval: 30 * time.Second,
		},
	}
}

// Load reads configuration in three layers, each overriding the last:
//
//  1. built-in defaults
//  2. an optional YAML file (CONFIG_PATH, then DefaultConfigPaths)
//  3. environment variables listed in envMappings
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variable names (lower case) to koanf paths.
// Anything not listed is ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_max_body_bytes":   "server.max_body_bytes",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"store_backend":      "store.backend",
	"duckdb_path":        "store.duckdb_path",
	"duckdb_threads":     "store.duckdb_threads",
	"duckdb_max_memory":  "store.duckdb_max_memory",
	"database_url":       "store.postgres_dsn",
	"postgres_dsn":       "store.postgres_dsn",
	"postgres_max_conns": "store.postgres_max_conns",

	"attribution_timeout":    "ingest.attribution_timeout",
	"attribution_cache_size": "ingest.attribution_cache_size",
	"attribution_cache_ttl":  "ingest.attribution_cache_ttl",
	"batch_concurrency":      "ingest.batch_concurrency",

	"breaker_max_requests":      "breaker.max_requests",
	"breaker_interval":          "breaker.interval",
	"breaker_timeout":           "breaker.timeout",
	"breaker_failure_threshold": "breaker.failure_threshold",

	"queue_backend":         "queue.backend",
	"nats_url":              "queue.nats_url",
	"nats_embedded":         "queue.embedded",
	"nats_store_dir":        "queue.store_dir",
	"nats_stream_name":      "queue.stream_name",
	"nats_durable":          "queue.durable",
	"queue_topic":           "queue.topic",
	"queue_poison_topic":    "queue.poison_topic",
	"queue_buffer_size":     "queue.buffer_size",
	"queue_max_retries":     "queue.max_retries",
	"queue_retry_interval":  "queue.retry_interval",
	"queue_publish_timeout": "queue.publish_timeout",

	"rollup_enabled":     "rollup.enabled",
	"rollup_ledger_path": "rollup.ledger_path",
	"rollup_ledger_ttl":  "rollup.ledger_ttl",
	"rollup_ledger_size": "rollup.ledger_size",

	"twitter_consumer_secret":    "webhooks.twitter_consumer_secret",
	"meta_verify_token":          "webhooks.meta_verify_token",
	"meta_app_secret":            "webhooks.meta_app_secret",
	"tiktok_client_secret":       "webhooks.tiktok_client_secret",
	"webhook_verify_signatures":  "webhooks.verify_signatures",
	"tiktok_signature_tolerance": "webhooks.tiktok_tolerance",

	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",

	"stream_enabled":       "stream.enabled",
	"stream_ping_interval": "stream.ping_interval",
}

// envTransformFunc maps an environment variable name to its config path,
// or "" to skip it.
//
//	HTTP_PORT     -> server.port
//	DATABASE_URL  -> store.postgres_dsn
//	NATS_EMBEDDED -> queue.embedded
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
