// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/socialpulse/internal/models"
)

type platformKey struct {
	platform models.Platform
	id       string
}

type rollupKey struct {
	userID   string
	platform models.Platform
}

// Memory is the in-process backend used by default and in tests. It keeps
// the same uniqueness rules as the SQL backends.
type Memory struct {
	mu       sync.RWMutex
	events   map[string]*models.Event
	rawIndex map[platformKey]string
	accounts map[platformKey]string
	rollups  map[rollupKey]*Rollup
	closed   bool
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		events:   make(map[string]*models.Event),
		rawIndex: make(map[platformKey]string),
		accounts: make(map[platformKey]string),
		rollups:  make(map[rollupKey]*Rollup),
	}
}

func (m *Memory) Insert(ctx context.Context, e *models.Event) error {
	if err := ctx.Err(); err != nil {
		return storageErr("insert", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return storageErr("insert", errClosed)
	}
	if _, exists := m.events[e.ID]; exists {
		return ErrDuplicateEvent
	}
	var raw platformKey
	if e.Metadata.RawEventID != "" {
		raw = platformKey{e.Platform, e.Metadata.RawEventID}
		if _, exists := m.rawIndex[raw]; exists {
			return ErrDuplicateRawEvent
		}
	}

	m.events[e.ID] = e.Clone()
	if raw.id != "" {
		m.rawIndex[raw] = e.ID
	}
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("get", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

func (m *Memory) ListByPlatform(ctx context.Context, q PlatformQuery) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	q = q.normalized()

	m.mu.RLock()
	matched := make([]*models.Event, 0)
	for _, e := range m.events {
		if q.matches(e) {
			matched = append(matched, e)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return a.ID > b.ID
	})

	total := int64(len(matched))
	start := min(q.offset(), len(matched))
	end := min(start+q.Limit, len(matched))

	out := make([]*models.Event, 0, end-start)
	for _, e := range matched[start:end] {
		out = append(out, e.Clone())
	}
	return newPage(q, out, total), nil
}

func (m *Memory) Update(context.Context, string, *models.Event) error {
	return ErrImmutabilityViolation
}

func (m *Memory) Delete(context.Context, string) error {
	return ErrImmutabilityViolation
}

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return storageErr("ping", errClosed)
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// ============================================================================
// Directory
// ============================================================================

func (m *Memory) LookupOwner(ctx context.Context, platform models.Platform, platformUserID string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, storageErr("lookup owner", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.accounts[platformKey{platform, platformUserID}]
	return userID, ok, nil
}

func (m *Memory) LinkAccount(ctx context.Context, platform models.Platform, platformUserID, userID string) error {
	if err := ctx.Err(); err != nil {
		return storageErr("link account", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[platformKey{platform, platformUserID}] = userID
	return nil
}

// ============================================================================
// Rollups
// ============================================================================

func (m *Memory) ApplyRollup(ctx context.Context, userID string, platform models.Platform, delta int64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return storageErr("apply rollup", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rollupKey{userID, platform}
	r, ok := m.rollups[key]
	if !ok {
		r = &Rollup{UserID: userID, Platform: platform}
		m.rollups[key] = r
	}
	r.EventCount += delta
	if at.After(r.LastIngestedAt) {
		r.LastIngestedAt = at.UTC()
	}
	return nil
}

func (m *Memory) GetRollup(ctx context.Context, userID string) (*RollupSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("get rollup", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []Rollup
	for key, r := range m.rollups {
		if key.userID == userID {
			rows = append(rows, *r)
		}
	}
	return summarize(userID, rows), nil
}
