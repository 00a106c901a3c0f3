// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/models"
)

//go:embed postgres_schema.sql
var postgresSchema string

// SQLSTATE codes the backend maps to sentinels.
const (
	pgUniqueViolation   = "23505"
	pgRestrictViolation = "23001"
	pgEventsPrimaryKey  = "events_pkey"
)

// Postgres is the pgxpool-backed relational store. Its schema refuses
// UPDATE, DELETE and TRUNCATE on events with triggers.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Backend = (*Postgres)(nil)

// OpenPostgres connects, pings and applies the embedded schema.
func OpenPostgres(ctx context.Context, cfg *config.StoreConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if cfg.PostgresMaxConns > 0 {
		poolCfg.MaxConns = cfg.PostgresMaxConns
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.EnsureSchema(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}

	logging.Info().Int32("max_conns", poolCfg.MaxConns).Msg("Postgres event store ready")
	return p, nil
}

// EnsureSchema applies the embedded schema. It is idempotent.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return nil
}

func (p *Postgres) Insert(ctx context.Context, e *models.Event) error {
	_, err := p.pool.Exec(ctx, insertEventSQL(), eventArgs(e)...)
	return mapPgError("insert", err)
}

func (p *Postgres) Get(ctx context.Context, id string) (*models.Event, error) {
	e, err := scanEvent(p.pool.QueryRow(ctx, "SELECT "+eventColumns+" FROM events WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get", err)
	}
	return e, nil
}

func (p *Postgres) ListByPlatform(ctx context.Context, q PlatformQuery) (*Page, error) {
	q = q.normalized()
	where, args := platformFilter(q)

	var total int64
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM events WHERE "+where, args...).Scan(&total); err != nil {
		return nil, storageErr("count", err)
	}

	rows, err := p.pool.Query(ctx, listEventsSQL(where, len(args)), append(args, q.Limit, q.offset())...)
	if err != nil {
		return nil, storageErr("list", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Event, error) {
		return scanEvent(row)
	})
	if err != nil {
		return nil, storageErr("list", err)
	}
	return newPage(q, events, total), nil
}

func (p *Postgres) Update(context.Context, string, *models.Event) error {
	return ErrImmutabilityViolation
}

func (p *Postgres) Delete(context.Context, string) error {
	return ErrImmutabilityViolation
}

func (p *Postgres) Ping(ctx context.Context) error {
	return storageErr("ping", p.pool.Ping(ctx))
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) LookupOwner(ctx context.Context, platform models.Platform, platformUserID string) (string, bool, error) {
	var userID string
	err := p.pool.QueryRow(ctx,
		"SELECT user_id FROM platform_accounts WHERE platform = $1 AND platform_user_id = $2",
		string(platform), platformUserID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageErr("lookup owner", err)
	}
	return userID, true, nil
}

func (p *Postgres) LinkAccount(ctx context.Context, platform models.Platform, platformUserID, userID string) error {
	_, err := p.pool.Exec(ctx, linkAccountSQL(), string(platform), platformUserID, userID, nowUTC())
	return storageErr("link account", err)
}

func (p *Postgres) ApplyRollup(ctx context.Context, userID string, platform models.Platform, delta int64, at time.Time) error {
	_, err := p.pool.Exec(ctx, rollupUpsertSQL(), userID, string(platform), delta, at.UTC())
	return storageErr("apply rollup", err)
}

func (p *Postgres) GetRollup(ctx context.Context, userID string) (*RollupSummary, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT user_id, platform, event_count, last_ingested_at FROM user_platform_rollups WHERE user_id = $1", userID)
	if err != nil {
		return nil, storageErr("get rollup", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Rollup, error) {
		return scanRollup(row)
	})
	if err != nil {
		return nil, storageErr("get rollup", err)
	}
	return summarize(userID, out), nil
}

// mapPgError turns constraint and trigger failures into sentinels.
func mapPgError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == pgEventsPrimaryKey {
				return ErrDuplicateEvent
			}
			return ErrDuplicateRawEvent
		case pgRestrictViolation:
			return ErrImmutabilityViolation
		}
	}
	return storageErr(op, err)
}
