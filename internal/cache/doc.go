// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package cache provides a generic, thread-safe LRU cache with TTL.

It fronts the account directory during attribution, so repeated events for
the same content owner cost one lookup per TTL, and it backs the in-memory
rollup ledger when no Badger path is configured.

	owners := cache.NewLRU[string, string](10000, 5*time.Minute)
	owners.Add("instagram:o1", "user-42")
	if id, ok := owners.Get("instagram:o1"); ok {
	    // ...
	}
*/
package cache
