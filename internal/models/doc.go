// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package models defines the canonical event record and its pre-validation draft.

Every activity ingested by SocialPulse, whether it arrived through a webhook,
a scheduled API pull or a direct POST, ends up as one Event. A like on an
Instagram reel, a retweet and a YouTube subscription all share the same shape:

	event := &models.Event{
	    ID:       "4c0f...",
	    Type:     models.EventTypeEngagement,
	    Platform: models.PlatformInstagram,
	    Actor:    models.Actor{PlatformUserID: "u1", Username: "alice"},
	    Subject:  models.Subject{ContentID: "m1", ContentType: models.ContentTypeReel, OwnerPlatformID: "o1"},
	    Metrics:  models.Metrics{Count: 1},
	    Metadata: models.Metadata{Source: models.SourceWebhook},
	}

Enumerations (EventType, Platform, ContentType, Source) are closed sets. Values
outside them are rejected, never coerced.

Draft is the shape callers and normalizers produce. It has no id and no
ingested_at; NewEvent is the only way to turn a draft into an Event and is
called by the ingestion coordinator after validation.
*/
package models
