// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package models

import "strings"

// EventType is the canonical kind of action an event records.
type EventType string

// Event types. The set is closed; unknown values are rejected, never coerced.
const (
	EventTypeEngagement EventType = "engagement"
	EventTypeImpression EventType = "impression"
	EventTypeFollow     EventType = "follow"
	EventTypeShare      EventType = "share"
	EventTypeComment    EventType = "comment"
	EventTypeSave       EventType = "save"
	EventTypeClick      EventType = "click"
)

// Platform identifies the social network an event originated on.
type Platform string

// Supported platforms.
const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformFacebook  Platform = "facebook"
	PlatformThreads   Platform = "threads"
)

// ContentType is the canonical kind of content an action targets.
type ContentType string

// Content types.
const (
	ContentTypePost    ContentType = "post"
	ContentTypeVideo   ContentType = "video"
	ContentTypeProfile ContentType = "profile"
	ContentTypeStory   ContentType = "story"
	ContentTypeReel    ContentType = "reel"
	ContentTypeShort   ContentType = "short"
)

// Source records how an event reached the system.
type Source string

// Event sources.
const (
	SourceAPI     Source = "api"
	SourceScraper Source = "scraper"
	SourceManual  Source = "manual"
	SourceWebhook Source = "webhook"
)

var (
	allEventTypes = []EventType{
		EventTypeEngagement, EventTypeImpression, EventTypeFollow, EventTypeShare,
		EventTypeComment, EventTypeSave, EventTypeClick,
	}
	allPlatforms = []Platform{
		PlatformTwitter, PlatformInstagram, PlatformTikTok,
		PlatformYouTube, PlatformFacebook, PlatformThreads,
	}
	allContentTypes = []ContentType{
		ContentTypePost, ContentTypeVideo, ContentTypeProfile,
		ContentTypeStory, ContentTypeReel, ContentTypeShort,
	}
	allSources = []Source{SourceAPI, SourceScraper, SourceManual, SourceWebhook}
)

// AllEventTypes returns the closed set of event types in declaration order.
func AllEventTypes() []EventType { return append([]EventType(nil), allEventTypes...) }

// AllPlatforms returns the closed set of platforms in declaration order.
func AllPlatforms() []Platform { return append([]Platform(nil), allPlatforms...) }

// AllContentTypes returns the closed set of content types in declaration order.
func AllContentTypes() []ContentType { return append([]ContentType(nil), allContentTypes...) }

// AllSources returns the closed set of sources in declaration order.
func AllSources() []Source { return append([]Source(nil), allSources...) }

// IsValid reports whether t is a member of the closed event type set.
func (t EventType) IsValid() bool {
	for _, v := range allEventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsValid reports whether p is a supported platform.
func (p Platform) IsValid() bool {
	for _, v := range allPlatforms {
		if v == p {
			return true
		}
	}
	return false
}

// IsValid reports whether c is a member of the closed content type set.
func (c ContentType) IsValid() bool {
	for _, v := range allContentTypes {
		if v == c {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a member of the closed source set.
func (s Source) IsValid() bool {
	for _, v := range allSources {
		if v == s {
			return true
		}
	}
	return false
}

// ParsePlatform maps a URL segment or config value to a Platform.
// Matching is case-insensitive and accepts the "x" and "ig" aliases.
func ParsePlatform(s string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "twitter", "x":
		return PlatformTwitter, true
	case "instagram", "ig":
		return PlatformInstagram, true
	case "tiktok":
		return PlatformTikTok, true
	case "youtube":
		return PlatformYouTube, true
	case "facebook":
		return PlatformFacebook, true
	case "threads":
		return PlatformThreads, true
	default:
		return "", false
	}
}

// EnumValues renders a closed set as a space separated list, the format
// validator's oneof tag expects.
func EnumValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, " ")
}
