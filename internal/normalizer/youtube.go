// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
)

var youtubeEngagements = lookupTable[models.EventType]{
	"like":             models.EventTypeEngagement,
	"view":             models.EventTypeImpression,
	"subscribe":        models.EventTypeFollow,
	"comment":          models.EventTypeComment,
	"share":            models.EventTypeShare,
	"save":             models.EventTypeSave,
	"playlist_add":     models.EventTypeSave,
	"click":            models.EventTypeClick,
	"card_click":       models.EventTypeClick,
	"end_screen_click": models.EventTypeClick,
}

var youtubeContent = lookupTable[models.ContentType]{
	"video":     models.ContentTypeVideo,
	"short":     models.ContentTypeShort,
	"shorts":    models.ContentTypeShort,
	"channel":   models.ContentTypeProfile,
	"post":      models.ContentTypePost,
	"community": models.ContentTypePost,
}

type youtubeAuthor struct {
	ChannelID       flexString `json:"channel_id"`
	Handle          string     `json:"handle"`
	DisplayName     string     `json:"display_name"`
	ProfileImageURL string     `json:"profile_image_url"`
}

type youtubeVideo struct {
	ID        flexString `json:"id"`
	ChannelID flexString `json:"channel_id"`
	Kind      string     `json:"kind"`
}

type youtubePayload struct {
	ID           flexString      `json:"id"`
	ActivityType string          `json:"activity_type"`
	Video        *youtubeVideo   `json:"video"`
	Author       *youtubeAuthor  `json:"author"`
	PublishedAt  json.RawMessage `json:"published_at"`
	Count        any             `json:"count"`
	WatchTimeMS  *int64          `json:"watch_time_ms"`
	DurationMS   *int64          `json:"duration_ms"`
	Value        *float64        `json:"value"`
}

type youtubeNormalizer struct{}

func (youtubeNormalizer) Platform() models.Platform { return models.PlatformYouTube }

func (n youtubeNormalizer) Normalize(raw []byte, opts Options) (*models.Draft, error) {
	var p youtubePayload
	if err := decodeObject(n.Platform(), raw, &p); err != nil {
		return nil, err
	}
	if p.Author == nil {
		return nil, missing(n.Platform(), "author")
	}
	if p.Video == nil {
		return nil, missing(n.Platform(), "video")
	}

	duration := p.DurationMS
	if duration == nil {
		duration = p.WatchTimeMS
	}

	return assemble(n.Platform(), draftParts{
		eventType:   youtubeEngagements.resolve(p.ActivityType, models.EventTypeEngagement),
		contentType: youtubeContent.resolve(firstNonEmpty(p.Video.Kind, "video"), models.ContentTypePost),
		actor: models.Actor{
			PlatformUserID: p.Author.ChannelID.String(),
			Username:       firstNonEmpty(p.Author.Handle, p.Author.DisplayName),
			DisplayName:    p.Author.DisplayName,
			AvatarURL:      p.Author.ProfileImageURL,
		},
		contentID:  p.Video.ID.String(),
		ownerID:    p.Video.ChannelID.String(),
		timestamp:  p.PublishedAt,
		count:      p.Count,
		durationMS: duration,
		value:      p.Value,
		rawEventID: p.ID.String(),
	}, opts), nil
}
