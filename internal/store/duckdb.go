// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/models"
)

// duckDBSchema is applied statement by statement on open. DuckDB has no
// triggers, so immutability rests on Update and Delete refusing.
var duckDBSchema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id                     VARCHAR PRIMARY KEY,
		event_type             VARCHAR NOT NULL,
		platform               VARCHAR NOT NULL,
		actor_platform_user_id VARCHAR NOT NULL,
		actor_username         VARCHAR NOT NULL,
		actor_display_name     VARCHAR,
		actor_avatar_url       VARCHAR,
		content_id             VARCHAR NOT NULL,
		content_type           VARCHAR NOT NULL,
		owner_platform_id      VARCHAR NOT NULL,
		metric_count           BIGINT NOT NULL DEFAULT 1 CHECK (metric_count >= 0),
		duration_ms            BIGINT,
		metric_value           DOUBLE,
		source                 VARCHAR NOT NULL,
		is_verified            BOOLEAN,
		raw_event_id           VARCHAR,
		user_agent             VARCHAR,
		ip_address             VARCHAR,
		event_time             TIMESTAMP NOT NULL,
		ingested_at            TIMESTAMP NOT NULL,
		attributed_user_id     VARCHAR
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_platform_raw ON events (platform, raw_event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_platform_type_time ON events (platform, event_type, event_time)`,
	`CREATE INDEX IF NOT EXISTS idx_events_owner_time ON events (owner_platform_id, event_time)`,
	`CREATE INDEX IF NOT EXISTS idx_events_actor_platform ON events (actor_platform_user_id, platform)`,
	`CREATE INDEX IF NOT EXISTS idx_events_attributed_time ON events (attributed_user_id, event_time)`,
	`CREATE TABLE IF NOT EXISTS platform_accounts (
		platform         VARCHAR NOT NULL,
		platform_user_id VARCHAR NOT NULL,
		user_id          VARCHAR NOT NULL,
		linked_at        TIMESTAMP NOT NULL,
		PRIMARY KEY (platform, platform_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_platform_rollups (
		user_id          VARCHAR NOT NULL,
		platform         VARCHAR NOT NULL,
		event_count      BIGINT NOT NULL DEFAULT 0,
		last_ingested_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, platform)
	)`,
}

// DuckDB is the embedded analytics-file backend.
type DuckDB struct {
	conn *sql.DB
}

var _ Backend = (*DuckDB)(nil)

// OpenDuckDB opens (creating if needed) the database file at cfg.DuckDBPath
// and applies the schema. An empty path opens an in-memory database.
func OpenDuckDB(ctx context.Context, cfg *config.StoreConfig) (*DuckDB, error) {
	threads := cfg.DuckDBThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if dir := filepath.Dir(cfg.DuckDBPath); cfg.DuckDBPath != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?threads=%d", cfg.DuckDBPath, threads)
	if cfg.DuckDBPath != "" {
		dsn += "&access_mode=read_write"
	}
	if cfg.DuckDBMaxMemory != "" {
		dsn += "&max_memory=" + cfg.DuckDBMaxMemory
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	// One writer keeps DuckDB's optimistic concurrency from surfacing
	// transaction conflicts on concurrent inserts.
	conn.SetMaxOpenConns(1)

	for _, stmt := range duckDBSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("failed to apply duckdb schema: %w", err)
		}
	}

	logging.Info().Str("path", cfg.DuckDBPath).Int("threads", threads).Msg("DuckDB event store ready")
	return &DuckDB{conn: conn}, nil
}

func closeQuietly(c *sql.DB) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database")
	}
}

func (d *DuckDB) Insert(ctx context.Context, e *models.Event) error {
	_, err := d.conn.ExecContext(ctx, insertEventSQL(), eventArgs(e)...)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return storageErr("insert", err)
	}

	// The driver only reports which constraint failed in free text, so ask
	// whether the id itself collided.
	var one int
	switch qerr := d.conn.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id = $1", e.ID).Scan(&one); {
	case qerr == nil:
		return ErrDuplicateEvent
	case errors.Is(qerr, sql.ErrNoRows):
		return ErrDuplicateRawEvent
	default:
		return storageErr("insert", qerr)
	}
}

func (d *DuckDB) Get(ctx context.Context, id string) (*models.Event, error) {
	row := d.conn.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = $1", id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	return e, nil
}

func (d *DuckDB) ListByPlatform(ctx context.Context, q PlatformQuery) (*Page, error) {
	q = q.normalized()
	where, args := platformFilter(q)

	var total int64
	if err := d.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE "+where, args...).Scan(&total); err != nil {
		return nil, storageErr("count", err)
	}

	rows, err := d.conn.QueryContext(ctx, listEventsSQL(where, len(args)), append(args, q.Limit, q.offset())...)
	if err != nil {
		return nil, storageErr("list", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, storageErr("list", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return newPage(q, events, total), nil
}

func (d *DuckDB) Update(context.Context, string, *models.Event) error {
	return ErrImmutabilityViolation
}

func (d *DuckDB) Delete(context.Context, string) error {
	return ErrImmutabilityViolation
}

func (d *DuckDB) Ping(ctx context.Context) error {
	return storageErr("ping", d.conn.PingContext(ctx))
}

func (d *DuckDB) Close() error {
	return d.conn.Close()
}

func (d *DuckDB) LookupOwner(ctx context.Context, platform models.Platform, platformUserID string) (string, bool, error) {
	var userID string
	err := d.conn.QueryRowContext(ctx,
		"SELECT user_id FROM platform_accounts WHERE platform = $1 AND platform_user_id = $2",
		string(platform), platformUserID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("lookup owner", err)
	}
	return userID, true, nil
}

func (d *DuckDB) LinkAccount(ctx context.Context, platform models.Platform, platformUserID, userID string) error {
	_, err := d.conn.ExecContext(ctx, linkAccountSQL(), string(platform), platformUserID, userID, nowUTC())
	return storageErr("link account", err)
}

func (d *DuckDB) ApplyRollup(ctx context.Context, userID string, platform models.Platform, delta int64, at time.Time) error {
	_, err := d.conn.ExecContext(ctx, rollupUpsertSQL(), userID, string(platform), delta, at.UTC())
	return storageErr("apply rollup", err)
}

func (d *DuckDB) GetRollup(ctx context.Context, userID string) (*RollupSummary, error) {
	rows, err := d.conn.QueryContext(ctx,
		"SELECT user_id, platform, event_count, last_ingested_at FROM user_platform_rollups WHERE user_id = $1", userID)
	if err != nil {
		return nil, storageErr("get rollup", err)
	}
	defer rows.Close()

	var out []Rollup
	for rows.Next() {
		r, err := scanRollup(rows)
		if err != nil {
			return nil, storageErr("get rollup", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get rollup", err)
	}
	return summarize(userID, out), nil
}
