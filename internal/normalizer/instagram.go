// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
)

var instagramEngagements = lookupTable[models.EventType]{
	"like":          models.EventTypeEngagement,
	"comment":       models.EventTypeComment,
	"save":          models.EventTypeSave,
	"share":         models.EventTypeShare,
	"follow":        models.EventTypeFollow,
	"impression":    models.EventTypeImpression,
	"view":          models.EventTypeImpression,
	"reach":         models.EventTypeImpression,
	"play":          models.EventTypeImpression,
	"profile_visit": models.EventTypeClick,
	"website_click": models.EventTypeClick,
	"click":         models.EventTypeClick,
}

var instagramContent = lookupTable[models.ContentType]{
	"image":          models.ContentTypePost,
	"carousel_album": models.ContentTypePost,
	"video":          models.ContentTypeVideo,
	"reels":          models.ContentTypeReel,
	"reel":           models.ContentTypeReel,
	"story":          models.ContentTypeStory,
	"profile":        models.ContentTypeProfile,
}

type instagramUser struct {
	ID                flexString `json:"id"`
	Username          string     `json:"username"`
	FullName          string     `json:"full_name"`
	ProfilePictureURL string     `json:"profile_picture_url"`
}

type instagramOwner struct {
	ID flexString `json:"id"`
}

type instagramMedia struct {
	ID        flexString      `json:"id"`
	MediaType string          `json:"media_type"`
	Owner     *instagramOwner `json:"owner"`
}

type instagramPayload struct {
	ID             flexString      `json:"id"`
	EngagementType string          `json:"engagement_type"`
	Media          *instagramMedia `json:"media"`
	User           *instagramUser  `json:"user"`
	Timestamp      json.RawMessage `json:"timestamp"`
	Count          any             `json:"count"`
	Value          *float64        `json:"value"`
}

type instagramNormalizer struct{}

func (instagramNormalizer) Platform() models.Platform { return models.PlatformInstagram }

func (n instagramNormalizer) Normalize(raw []byte, opts Options) (*models.Draft, error) {
	var p instagramPayload
	if err := decodeObject(n.Platform(), raw, &p); err != nil {
		return nil, err
	}
	if p.User == nil {
		return nil, missing(n.Platform(), "user")
	}
	if p.Media == nil {
		return nil, missing(n.Platform(), "media")
	}

	var owner string
	if p.Media.Owner != nil {
		owner = p.Media.Owner.ID.String()
	}

	return assemble(n.Platform(), draftParts{
		eventType:   instagramEngagements.resolve(p.EngagementType, models.EventTypeEngagement),
		contentType: instagramContent.resolve(p.Media.MediaType, models.ContentTypePost),
		actor: models.Actor{
			PlatformUserID: p.User.ID.String(),
			Username:       p.User.Username,
			DisplayName:    p.User.FullName,
			AvatarURL:      p.User.ProfilePictureURL,
		},
		contentID:  p.Media.ID.String(),
		ownerID:    owner,
		timestamp:  p.Timestamp,
		count:      p.Count,
		value:      p.Value,
		rawEventID: p.ID.String(),
	}, opts), nil
}
