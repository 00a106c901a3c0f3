// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/testinfra"
)

func TestPostgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg, err := testinfra.NewPostgresContainer(ctx, testinfra.WithStartTimeout(90*time.Second))
	if err != nil {
		t.Fatalf("Failed to create Postgres container: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, pg.Container)

	// The schema refuses TRUNCATE, so each subtest gets its own database.
	var seq atomic.Int64
	fresh := func(t *testing.T) Backend {
		name := fmt.Sprintf("suite_%d", seq.Add(1))
		admin, err := pgx.Connect(ctx, pg.DSN)
		if err != nil {
			t.Fatalf("Failed to connect: %v", err)
		}
		defer admin.Close(ctx)
		if _, err := admin.Exec(ctx, "CREATE DATABASE "+name); err != nil {
			t.Fatalf("Failed to create database: %v", err)
		}

		dsn := strings.Replace(pg.DSN, "/socialpulse?", "/"+name+"?", 1)
		p, err := OpenPostgres(ctx, &config.StoreConfig{Backend: config.StorePostgres, PostgresDSN: dsn, PostgresMaxConns: 4})
		if err != nil {
			t.Fatalf("OpenPostgres failed: %v", err)
		}
		t.Cleanup(func() { p.Close() })
		return p
	}

	runBackendSuite(t, fresh)

	t.Run("triggers refuse direct mutation", func(t *testing.T) {
		p := fresh(t).(*Postgres)
		if err := p.Insert(ctx, testEvent("locked", models.PlatformFacebook, suiteBase)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}

		tests := []struct {
			name string
			sql  string
		}{
			{"update", "UPDATE events SET actor_username = 'x' WHERE id = 'locked'"},
			{"delete", "DELETE FROM events WHERE id = 'locked'"},
			{"truncate", "TRUNCATE events"},
		}
		for _, tt := range tests {
			_, err := p.pool.Exec(ctx, tt.sql)
			if mapped := mapPgError(tt.name, err); !errors.Is(mapped, ErrImmutabilityViolation) {
				t.Errorf("%s: Expected ErrImmutabilityViolation, got %v", tt.name, err)
			}
		}
	})

	t.Run("schema is idempotent", func(t *testing.T) {
		p := fresh(t).(*Postgres)
		if err := p.EnsureSchema(ctx); err != nil {
			t.Errorf("Expected second schema apply to succeed, got %v", err)
		}
	})
}
