// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package config

import "time"

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Store    StoreConfig    `koanf:"store"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Queue    QueueConfig    `koanf:"queue"`
	Rollup   RollupConfig   `koanf:"rollup"`
	Webhooks WebhooksConfig `koanf:"webhooks"`
	Security SecurityConfig `koanf:"security"`
	Stream   StreamConfig   `koanf:"stream"`

	// Pollers are only configurable from the YAML file.
	Pollers []PollerConfig `koanf:"pollers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies on ingest and webhook routes.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Store backends.
const (
	StoreMemory   = "memory"
	StoreDuckDB   = "duckdb"
	StorePostgres = "postgres"
)

// StoreConfig selects and tunes the event store.
type StoreConfig struct {
	Backend string `koanf:"backend"`

	DuckDBPath      string `koanf:"duckdb_path"`
	DuckDBThreads   int    `koanf:"duckdb_threads"` // 0 = NumCPU
	DuckDBMaxMemory string `koanf:"duckdb_max_memory"`

	PostgresDSN      string `koanf:"postgres_dsn"`
	PostgresMaxConns int32  `koanf:"postgres_max_conns"`
}

// IngestConfig tunes the ingestion coordinator.
type IngestConfig struct {
	// AttributionTimeout bounds one directory lookup. A timeout is a miss.
	AttributionTimeout time.Duration `koanf:"attribution_timeout"`

	AttributionCacheSize int           `koanf:"attribution_cache_size"`
	AttributionCacheTTL  time.Duration `koanf:"attribution_cache_ttl"`

	// BatchConcurrency bounds parallel items within one batch.
	BatchConcurrency int `koanf:"batch_concurrency"`
}

// BreakerConfig is shared by the attribution lookup and the queue publisher.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// Queue backends.
const (
	QueueChannel = "channel"
	QueueNATS    = "nats"
)

// QueueConfig configures the watermill transport that carries
// events.ingested notifications.
type QueueConfig struct {
	Backend string `koanf:"backend"`

	NATSURL    string `koanf:"nats_url"`
	Embedded   bool   `koanf:"embedded"`
	StoreDir   string `koanf:"store_dir"`
	StreamName string `koanf:"stream_name"`
	Durable    string `koanf:"durable"`

	Topic       string `koanf:"topic"`
	PoisonTopic string `koanf:"poison_topic"`

	// BufferSize is the dispatcher channel capacity; notifications beyond it
	// are dropped.
	BufferSize int `koanf:"buffer_size"`

	MaxRetries      int           `koanf:"max_retries"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	PublishTimeout  time.Duration `koanf:"publish_timeout"`
	CloseTimeout    time.Duration `koanf:"close_timeout"`
	SubscriberCount int           `koanf:"subscriber_count"`
}

// RollupConfig controls the per-user rollup consumer.
type RollupConfig struct {
	Enabled bool `koanf:"enabled"`

	// LedgerPath enables the Badger ledger. Empty keeps it in memory.
	LedgerPath string        `koanf:"ledger_path"`
	LedgerTTL  time.Duration `koanf:"ledger_ttl"`
	LedgerSize int           `koanf:"ledger_size"`
}

// WebhooksConfig carries handshake tokens and signing secrets.
type WebhooksConfig struct {
	TwitterConsumerSecret string        `koanf:"twitter_consumer_secret"`
	MetaVerifyToken       string        `koanf:"meta_verify_token"`
	MetaAppSecret         string        `koanf:"meta_app_secret"`
	TikTokClientSecret    string        `koanf:"tiktok_client_secret"`
	VerifySignatures      bool          `koanf:"verify_signatures"`
	TikTokTolerance       time.Duration `koanf:"tiktok_tolerance"`
}

// SecurityConfig holds request rate limiting.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// StreamConfig controls the /stream websocket feed.
type StreamConfig struct {
	Enabled      bool          `koanf:"enabled"`
	PingInterval time.Duration `koanf:"ping_interval"`
}

// PollerConfig describes one periodic API pull.
type PollerConfig struct {
	Platform    string        `koanf:"platform"`
	URL         string        `koanf:"url"`
	Interval    time.Duration `koanf:"interval"`
	Timeout     time.Duration `koanf:"timeout"`
	Source      string        `koanf:"source"`
	BearerToken string        `koanf:"bearer_token"`
}
