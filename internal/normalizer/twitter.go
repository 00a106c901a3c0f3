// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
)

var twitterEngagements = lookupTable[models.EventType]{
	"like":          models.EventTypeEngagement,
	"favorite":      models.EventTypeEngagement,
	"retweet":       models.EventTypeShare,
	"quote":         models.EventTypeShare,
	"reply":         models.EventTypeComment,
	"follow":        models.EventTypeFollow,
	"impression":    models.EventTypeImpression,
	"view":          models.EventTypeImpression,
	"bookmark":      models.EventTypeSave,
	"url_click":     models.EventTypeClick,
	"link_click":    models.EventTypeClick,
	"profile_click": models.EventTypeClick,
	"click":         models.EventTypeClick,
}

// Twitter has no content type field; the table keys on which object the
// payload carried.
var twitterContent = lookupTable[models.ContentType]{
	"tweet":  models.ContentTypePost,
	"target": models.ContentTypeProfile,
}

type twitterUser struct {
	ID                   flexString `json:"id"`
	IDStr                flexString `json:"id_str"`
	ScreenName           string     `json:"screen_name"`
	Name                 string     `json:"name"`
	ProfileImageURLHTTPS string     `json:"profile_image_url_https"`
}

func (u *twitterUser) id() string {
	return firstNonEmpty(u.IDStr.String(), u.ID.String())
}

type twitterTweet struct {
	ID       flexString   `json:"id"`
	IDStr    flexString   `json:"id_str"`
	AuthorID flexString   `json:"author_id"`
	User     *twitterUser `json:"user"`
}

type twitterPayload struct {
	ID          flexString      `json:"id"`
	EventID     flexString      `json:"event_id"`
	EventType   string          `json:"event_type"`
	Tweet       *twitterTweet   `json:"tweet"`
	Target      *twitterUser    `json:"target"`
	User        *twitterUser    `json:"user"`
	CreatedAt   json.RawMessage `json:"created_at"`
	TimestampMS json.RawMessage `json:"timestamp_ms"`
	Count       any             `json:"count"`
	Value       *float64        `json:"value"`
}

type twitterNormalizer struct{}

func (twitterNormalizer) Platform() models.Platform { return models.PlatformTwitter }

func (n twitterNormalizer) Normalize(raw []byte, opts Options) (*models.Draft, error) {
	var p twitterPayload
	if err := decodeObject(n.Platform(), raw, &p); err != nil {
		return nil, err
	}
	if p.User == nil {
		return nil, missing(n.Platform(), "user")
	}

	var contentKind, contentID, owner string
	switch {
	case p.Tweet != nil:
		contentKind = "tweet"
		contentID = firstNonEmpty(p.Tweet.IDStr.String(), p.Tweet.ID.String())
		owner = p.Tweet.AuthorID.String()
		if owner == "" && p.Tweet.User != nil {
			owner = p.Tweet.User.id()
		}
	case p.Target != nil:
		contentKind = "target"
		contentID = p.Target.id()
		owner = contentID
	default:
		return nil, &Error{Platform: n.Platform(), Field: "tweet", Message: "payload carries neither a tweet nor a target"}
	}

	ts := []byte(p.CreatedAt)
	if isAbsent(ts) {
		ts = p.TimestampMS
	}

	return assemble(n.Platform(), draftParts{
		eventType:   twitterEngagements.resolve(p.EventType, models.EventTypeEngagement),
		contentType: twitterContent.resolve(contentKind, models.ContentTypePost),
		actor: models.Actor{
			PlatformUserID: p.User.id(),
			Username:       p.User.ScreenName,
			DisplayName:    p.User.Name,
			AvatarURL:      p.User.ProfileImageURLHTTPS,
		},
		contentID:  contentID,
		ownerID:    owner,
		timestamp:  ts,
		count:      p.Count,
		value:      p.Value,
		rawEventID: firstNonEmpty(p.EventID.String(), p.ID.String()),
	}, opts), nil
}
