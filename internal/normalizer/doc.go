// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package normalizer maps platform-native activity payloads onto draft events.

There is exactly one variant per supported platform, chosen by For from the
closed platform enumeration. Each variant owns two static tables: one from the
platform's engagement label to the canonical event type, and one from its
content label to the canonical content type. Labels the tables do not know
map to engagement and post respectively.

Normalizers are pure. They never assign an id or ingested_at and never touch
storage; the resulting draft still has to pass the validation engine.

Timestamps may arrive as ISO-8601 strings, Twitter's created_at layout, Unix
seconds, Unix milliseconds or numeric strings:

	draft, err := normalizer.Normalize(models.PlatformInstagram, body, normalizer.Options{
	    Source:     models.SourceWebhook,
	    ReceivedAt: time.Now(),
	})
*/
package normalizer
