// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package normalizer

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/models"
)

var facebookEngagements = lookupTable[models.EventType]{
	"like":       models.EventTypeEngagement,
	"reaction":   models.EventTypeEngagement,
	"comment":    models.EventTypeComment,
	"share":      models.EventTypeShare,
	"follow":     models.EventTypeFollow,
	"page_like":  models.EventTypeFollow,
	"impression": models.EventTypeImpression,
	"view":       models.EventTypeImpression,
	"save":       models.EventTypeSave,
	"click":      models.EventTypeClick,
	"link_click": models.EventTypeClick,
}

var facebookContent = lookupTable[models.ContentType]{
	"status": models.ContentTypePost,
	"photo":  models.ContentTypePost,
	"post":   models.ContentTypePost,
	"link":   models.ContentTypePost,
	"video":  models.ContentTypeVideo,
	"reel":   models.ContentTypeReel,
	"story":  models.ContentTypeStory,
	"page":   models.ContentTypeProfile,
}

type facebookUser struct {
	ID         flexString `json:"id"`
	Username   string     `json:"username"`
	Name       string     `json:"name"`
	PictureURL string     `json:"picture_url"`
}

// facebookPayload follows the flat shape of a Graph API feed change value.
type facebookPayload struct {
	EventID      flexString      `json:"event_id"`
	ID           flexString      `json:"id"`
	Verb         string          `json:"verb"`
	ReactionType string          `json:"reaction_type"`
	Item         string          `json:"item"`
	PostID       flexString      `json:"post_id"`
	OwnerID      flexString      `json:"owner_id"`
	From         *facebookUser   `json:"from"`
	CreatedTime  json.RawMessage `json:"created_time"`
	Count        any             `json:"count"`
	Value        *float64        `json:"value"`
}

type facebookNormalizer struct{}

func (facebookNormalizer) Platform() models.Platform { return models.PlatformFacebook }

func (n facebookNormalizer) Normalize(raw []byte, opts Options) (*models.Draft, error) {
	var p facebookPayload
	if err := decodeObject(n.Platform(), raw, &p); err != nil {
		return nil, err
	}
	if p.From == nil {
		return nil, missing(n.Platform(), "from")
	}

	contentType := facebookContent.resolve(p.Item, models.ContentTypePost)
	contentID := p.PostID.String()
	if contentID == "" && contentType == models.ContentTypeProfile {
		contentID = p.OwnerID.String()
	}
	if contentID == "" && p.OwnerID == "" {
		return nil, &Error{Platform: n.Platform(), Field: "post_id", Message: "payload identifies no content"}
	}

	// A reaction_type without a verb is still a reaction.
	verb := p.Verb
	if verb == "" && p.ReactionType != "" {
		verb = "reaction"
	}

	return assemble(n.Platform(), draftParts{
		eventType:   facebookEngagements.resolve(verb, models.EventTypeEngagement),
		contentType: contentType,
		actor: models.Actor{
			PlatformUserID: p.From.ID.String(),
			Username:       firstNonEmpty(p.From.Username, p.From.Name),
			DisplayName:    p.From.Name,
			AvatarURL:      p.From.PictureURL,
		},
		contentID:  contentID,
		ownerID:    p.OwnerID.String(),
		timestamp:  p.CreatedTime,
		count:      p.Count,
		value:      p.Value,
		rawEventID: firstNonEmpty(p.EventID.String(), p.ID.String()),
	}, opts), nil
}
