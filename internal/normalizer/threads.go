// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
)

var threadsEngagements = lookupTable[models.EventType]{
	"like":   models.EventTypeEngagement,
	"reply":  models.EventTypeComment,
	"repost": models.EventTypeShare,
	"quote":  models.EventTypeShare,
	"share":  models.EventTypeShare,
	"follow": models.EventTypeFollow,
	"view":   models.EventTypeImpression,
	"views":  models.EventTypeImpression,
	"save":   models.EventTypeSave,
	"click":  models.EventTypeClick,
}

var threadsContent = lookupTable[models.ContentType]{
	"text_post":      models.ContentTypePost,
	"image":          models.ContentTypePost,
	"carousel_album": models.ContentTypePost,
	"repost_facade":  models.ContentTypePost,
	"video":          models.ContentTypeVideo,
}

type threadsUser struct {
	ID                       flexString `json:"id"`
	Username                 string     `json:"username"`
	Name                     string     `json:"name"`
	ThreadsProfilePictureURL string     `json:"threads_profile_picture_url"`
}

type threadsPost struct {
	ID        flexString `json:"id"`
	MediaType string     `json:"media_type"`
	Owner     *struct {
		ID flexString `json:"id"`
	} `json:"owner"`
}

type threadsPayload struct {
	ID             flexString      `json:"id"`
	EngagementType string          `json:"engagement_type"`
	Thread         *threadsPost    `json:"thread"`
	User           *threadsUser    `json:"user"`
	Timestamp      json.RawMessage `json:"timestamp"`
	Count          any             `json:"count"`
	Value          *float64        `json:"value"`
}

type threadsNormalizer struct{}

func (threadsNormalizer) Platform() models.Platform { return models.PlatformThreads }

func (n threadsNormalizer) Normalize(raw []byte, opts Options) (*models.Draft, error) {
	var p threadsPayload
	if err := decodeObject(n.Platform(), raw, &p); err != nil {
		return nil, err
	}
	if p.User == nil {
		return nil, missing(n.Platform(), "user")
	}
	if p.Thread == nil {
		return nil, missing(n.Platform(), "thread")
	}

	var owner string
	if p.Thread.Owner != nil {
		owner = p.Thread.Owner.ID.String()
	}

	return assemble(n.Platform(), draftParts{
		eventType:   threadsEngagements.resolve(p.EngagementType, models.EventTypeEngagement),
		contentType: threadsContent.resolve(p.Thread.MediaType, models.ContentTypePost),
		actor: models.Actor{
			PlatformUserID: p.User.ID.String(),
			Username:       p.User.Username,
			DisplayName:    p.User.Name,
			AvatarURL:      p.User.ThreadsProfilePictureURL,
		},
		contentID:  p.Thread.ID.String(),
		ownerID:    owner,
		timestamp:  p.Timestamp,
		count:      p.Count,
		value:      p.Value,
		rawEventID: p.ID.String(),
	}, opts), nil
}
