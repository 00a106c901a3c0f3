// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"context"
	"time"

	"github.com/tomtom215/socialpulse/internal/models"
)

// EventStore is the append-only event log. Update and Delete exist only so
// callers get an explicit refusal; every backend returns
// ErrImmutabilityViolation from them.
type EventStore interface {
	Insert(ctx context.Context, e *models.Event) error
	Get(ctx context.Context, id string) (*models.Event, error)
	ListByPlatform(ctx context.Context, q PlatformQuery) (*Page, error)
	Update(ctx context.Context, id string, e *models.Event) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Directory resolves a platform account to the internal user that owns it.
type Directory interface {
	// LookupOwner returns ("", false, nil) when the account is not linked.
	LookupOwner(ctx context.Context, platform models.Platform, platformUserID string) (string, bool, error)
	LinkAccount(ctx context.Context, platform models.Platform, platformUserID, userID string) error
}

// RollupStore keeps per-user, per-platform event counters.
type RollupStore interface {
	ApplyRollup(ctx context.Context, userID string, platform models.Platform, delta int64, at time.Time) error
	GetRollup(ctx context.Context, userID string) (*RollupSummary, error)
}

// Backend is everything a storage engine provides.
type Backend interface {
	EventStore
	Directory
	RollupStore
	Ping(ctx context.Context) error
}

// Pagination bounds for ListByPlatform.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// PlatformQuery selects one platform's events, newest first.
type PlatformQuery struct {
	Platform models.Platform
	Start    *time.Time // inclusive
	End      *time.Time // inclusive
	Limit    int
	Page     int // 1-based
}

func (q PlatformQuery) normalized() PlatformQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

func (q PlatformQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

func (q PlatformQuery) matches(e *models.Event) bool {
	if e.Platform != q.Platform {
		return false
	}
	if q.Start != nil && e.Timestamp.Before(*q.Start) {
		return false
	}
	if q.End != nil && e.Timestamp.After(*q.End) {
		return false
	}
	return true
}

// Page is one page of a platform listing.
type Page struct {
	Events     []*models.Event
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

func newPage(q PlatformQuery, events []*models.Event, total int64) *Page {
	if events == nil {
		events = []*models.Event{}
	}
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &Page{Events: events, Page: q.Page, Limit: q.Limit, Total: total, TotalPages: pages}
}

// Rollup is one user_platform_rollups row.
type Rollup struct {
	UserID         string
	Platform       models.Platform
	EventCount     int64
	LastIngestedAt time.Time
}

// RollupSummary aggregates a user's rollup rows.
type RollupSummary struct {
	UserID         string                    `json:"user_id"`
	Total          int64                     `json:"total"`
	PerPlatform    map[models.Platform]int64 `json:"per_platform"`
	LastIngestedAt time.Time                 `json:"last_ingested_at"`
}

func summarize(userID string, rows []Rollup) *RollupSummary {
	s := &RollupSummary{UserID: userID, PerPlatform: make(map[models.Platform]int64, len(rows))}
	for _, r := range rows {
		s.Total += r.EventCount
		s.PerPlatform[r.Platform] += r.EventCount
		if r.LastIngestedAt.After(s.LastIngestedAt) {
			s.LastIngestedAt = r.LastIngestedAt
		}
	}
	return s
}
