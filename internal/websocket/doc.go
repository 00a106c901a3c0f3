// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package websocket serves the /stream live feed of ingested events.

The Hub is fed by eventprocessor.StreamHandler, which consumes the
events.ingested topic, and fans each event out to connected clients. A
client may subscribe to one platform with ?platform=; otherwise it receives
every event.

Frames are JSON:

	{"type":"event","data":{...canonical event...}}
	{"type":"pong"}

Clients may send {"type":"ping"} and receive a pong. The server also sends
protocol-level pings every stream.ping_interval.

Slow clients are disconnected rather than buffered without bound, and a
full broadcast queue drops events. The stream is a convenience view; the
event store remains the record.
*/
package websocket
