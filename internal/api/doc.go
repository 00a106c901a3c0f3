// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package api exposes the ingestion pipeline over HTTP using the chi router.

Routes:

	POST   /ingest                  one canonical event, 201 {event_id, ingested_at}
	POST   /ingest/batch            up to 1000 events, 201 {successful, failed}
	GET    /platform/{platform}     newest first, startDate/endDate/limit/page
	GET    /{eventId}               one event
	PUT    /{eventId}               always 403
	PATCH  /{eventId}               always 403
	DELETE /{eventId}               always 403
	GET    /webhooks/{platform}     subscription handshake
	POST   /webhooks/{platform}     platform delivery, 200 {received, accepted}
	GET    /stream                  websocket feed, optional ?platform=
	GET    /rollups/{userId}        per-user counters
	GET    /metrics                 Prometheus exposition

Every error body has the shape {"error": code, "field": path, "message": text}.
The mapping from internal errors to status codes lives in statusForError and
nowhere else. Storage faults surface as 500 with a generic message; the cause
is logged with the request id.

Ingest and webhook routes share one httprate limiter keyed by client IP.
Read routes are gzip compressed.
*/
package api
