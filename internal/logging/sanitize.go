// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package logging

import (
	"fmt"
	"strings"
)

// maxLoggedValue caps client-controlled strings written to logs.
const maxLoggedValue = 256

// SanitizeValue escapes control characters and truncates s so that values
// taken from webhook payloads or query strings cannot forge log lines.
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(min(len(s), maxLoggedValue))
	n := 0
	for _, r := range s {
		if n >= maxLoggedValue {
			b.WriteString("...")
			break
		}
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
		n++
	}
	return b.String()
}

// MaskSecret keeps the first and last four characters of a credential.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
