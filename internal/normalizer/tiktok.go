// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
)

var tiktokEngagements = lookupTable[models.EventType]{
	"like":          models.EventTypeEngagement,
	"comment":       models.EventTypeComment,
	"share":         models.EventTypeShare,
	"follow":        models.EventTypeFollow,
	"view":          models.EventTypeImpression,
	"play":          models.EventTypeImpression,
	"favorite":      models.EventTypeSave,
	"collect":       models.EventTypeSave,
	"click":         models.EventTypeClick,
	"profile_click": models.EventTypeClick,
}

var tiktokContent = lookupTable[models.ContentType]{
	"video":   models.ContentTypeVideo,
	"live":    models.ContentTypeVideo,
	"photo":   models.ContentTypePost,
	"profile": models.ContentTypeProfile,
}

type tiktokUser struct {
	OpenID      flexString `json:"open_id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	AvatarURL   string     `json:"avatar_url"`
}

type tiktokVideo struct {
	ID       flexString `json:"id"`
	AuthorID flexString `json:"author_id"`
	Type     string     `json:"type"`
}

type tiktokPayload struct {
	EventID    flexString      `json:"event_id"`
	LogID      flexString      `json:"log_id"`
	Event      string          `json:"event"`
	Video      *tiktokVideo    `json:"video"`
	User       *tiktokUser     `json:"user"`
	CreateTime json.RawMessage `json:"create_time"`
	Count      any             `json:"count"`
	DurationMS *int64          `json:"duration_ms"`
	Value      *float64        `json:"value"`
}

type tiktokNormalizer struct{}

func (tiktokNormalizer) Platform() models.Platform { return models.PlatformTikTok }

func (n tiktokNormalizer) Normalize(raw []byte, opts Options) (*models.Draft, error) {
	var p tiktokPayload
	if err := decodeObject(n.Platform(), raw, &p); err != nil {
		return nil, err
	}
	if p.User == nil {
		return nil, missing(n.Platform(), "user")
	}
	if p.Video == nil {
		return nil, missing(n.Platform(), "video")
	}

	// Video payloads usually omit the type; an untyped object is a video.
	kind := firstNonEmpty(p.Video.Type, "video")

	return assemble(n.Platform(), draftParts{
		eventType:   tiktokEngagements.resolve(p.Event, models.EventTypeEngagement),
		contentType: tiktokContent.resolve(kind, models.ContentTypePost),
		actor: models.Actor{
			PlatformUserID: p.User.OpenID.String(),
			Username:       p.User.Username,
			DisplayName:    p.User.DisplayName,
			AvatarURL:      p.User.AvatarURL,
		},
		contentID:  p.Video.ID.String(),
		ownerID:    p.Video.AuthorID.String(),
		timestamp:  p.CreateTime,
		count:      p.Count,
		durationMS: p.DurationMS,
		value:      p.Value,
		rawEventID: firstNonEmpty(p.EventID.String(), p.LogID.String()),
	}, opts), nil
}
