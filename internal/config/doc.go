// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

/*
Package config loads service configuration with koanf.

Layers, lowest precedence first:

 1. defaults from defaultConfig
 2. a YAML file: $CONFIG_PATH, ./config.yaml, or /etc/socialpulse/config.yaml
 3. environment variables named in envMappings

Environment variables not listed in envMappings are ignored so unrelated
process environment cannot leak into configuration. Poller definitions are
lists and are read only from the YAML file:

	pollers:
	  - platform: youtube
	    url: https://collector.internal/youtube/activities
	    interval: 1m
	    source: api
*/
package config
