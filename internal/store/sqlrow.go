// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/socialpulse/internal/models"
)

// eventColumns is the column order shared by both SQL backends.
const eventColumns = `id, event_type, platform,
	actor_platform_user_id, actor_username, actor_display_name, actor_avatar_url,
	content_id, content_type, owner_platform_id,
	metric_count, duration_ms, metric_value,
	source, is_verified, raw_event_id, user_agent, ip_address,
	event_time, ingested_at, attributed_user_id`

const eventColumnCount = 21

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func insertEventSQL() string {
	placeholders := make([]string, eventColumnCount)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return "INSERT INTO events (" + eventColumns + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
}

func eventArgs(e *models.Event) []any {
	return []any{
		e.ID, string(e.Type), string(e.Platform),
		e.Actor.PlatformUserID, e.Actor.Username, nullString(e.Actor.DisplayName), nullString(e.Actor.AvatarURL),
		e.Subject.ContentID, string(e.Subject.ContentType), e.Subject.OwnerPlatformID,
		e.Metrics.Count, nullPtr(e.Metrics.DurationMS), nullPtr(e.Metrics.Value),
		string(e.Metadata.Source), nullPtr(e.Metadata.IsVerified), nullString(e.Metadata.RawEventID),
		nullString(e.Metadata.UserAgent), nullString(e.Metadata.IPAddress),
		e.Timestamp.UTC(), e.IngestedAt.UTC(), nullString(e.AttributedUserID),
	}
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e                                      models.Event
		eventType, platform, contentType, src  string
		displayName, avatarURL, rawID          sql.NullString
		userAgent, ipAddress, attributedUserID sql.NullString
		durationMS                             sql.NullInt64
		value                                  sql.NullFloat64
		verified                               sql.NullBool
	)

	err := row.Scan(
		&e.ID, &eventType, &platform,
		&e.Actor.PlatformUserID, &e.Actor.Username, &displayName, &avatarURL,
		&e.Subject.ContentID, &contentType, &e.Subject.OwnerPlatformID,
		&e.Metrics.Count, &durationMS, &value,
		&src, &verified, &rawID, &userAgent, &ipAddress,
		&e.Timestamp, &e.IngestedAt, &attributedUserID,
	)
	if err != nil {
		return nil, err
	}

	e.Type = models.EventType(eventType)
	e.Platform = models.Platform(platform)
	e.Subject.ContentType = models.ContentType(contentType)
	e.Metadata.Source = models.Source(src)
	e.Actor.DisplayName = displayName.String
	e.Actor.AvatarURL = avatarURL.String
	e.Metadata.RawEventID = rawID.String
	e.Metadata.UserAgent = userAgent.String
	e.Metadata.IPAddress = ipAddress.String
	e.AttributedUserID = attributedUserID.String
	if durationMS.Valid {
		e.Metrics.DurationMS = &durationMS.Int64
	}
	if value.Valid {
		e.Metrics.Value = &value.Float64
	}
	if verified.Valid {
		e.Metadata.IsVerified = &verified.Bool
	}
	e.Timestamp = e.Timestamp.UTC()
	e.IngestedAt = e.IngestedAt.UTC()
	return &e, nil
}

// platformFilter renders the WHERE clause for a platform listing with
// positional placeholders starting at $1.
func platformFilter(q PlatformQuery) (string, []any) {
	clauses := []string{"platform = $1"}
	args := []any{string(q.Platform)}
	if q.Start != nil {
		args = append(args, q.Start.UTC())
		clauses = append(clauses, fmt.Sprintf("event_time >= $%d", len(args)))
	}
	if q.End != nil {
		args = append(args, q.End.UTC())
		clauses = append(clauses, fmt.Sprintf("event_time <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func listEventsSQL(where string, argCount int) string {
	return fmt.Sprintf("SELECT %s FROM events WHERE %s ORDER BY event_time DESC, id DESC LIMIT $%d OFFSET $%d",
		eventColumns, where, argCount+1, argCount+2)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullPtr[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func rollupUpsertSQL() string {
	return `INSERT INTO user_platform_rollups (user_id, platform, event_count, last_ingested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			event_count = user_platform_rollups.event_count + EXCLUDED.event_count,
			last_ingested_at = GREATEST(user_platform_rollups.last_ingested_at, EXCLUDED.last_ingested_at)`
}

func linkAccountSQL() string {
	return `INSERT INTO platform_accounts (platform, platform_user_id, user_id, linked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (platform, platform_user_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			linked_at = EXCLUDED.linked_at`
}

func scanRollup(row rowScanner) (Rollup, error) {
	var r Rollup
	var platform string
	if err := row.Scan(&r.UserID, &platform, &r.EventCount, &r.LastIngestedAt); err != nil {
		return Rollup{}, err
	}
	r.Platform = models.Platform(platform)
	r.LastIngestedAt = r.LastIngestedAt.UTC()
	return r, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
