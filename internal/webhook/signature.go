// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/socialpulse/internal/models"
)

// Signature headers per platform family.
const (
	HeaderTwitterSignature = "X-Twitter-Webhooks-Signature"
	HeaderMetaSignature    = "X-Hub-Signature-256"
	HeaderTikTokSignature  = "TikTok-Signature"
)

// checkSignature reports whether the delivery carries a valid signature and,
// if not, why.
func (v *Verifier) checkSignature(req Request) (bool, string) {
	switch v.platform {
	case models.PlatformTwitter:
		return checkPrefixed(req.Header.Get(HeaderTwitterSignature), HeaderTwitterSignature,
			TwitterSignature(v.cfg.TwitterConsumerSecret, req.Body))
	case models.PlatformInstagram, models.PlatformFacebook, models.PlatformThreads:
		return checkPrefixed(req.Header.Get(HeaderMetaSignature), HeaderMetaSignature,
			MetaSignature(v.cfg.MetaAppSecret, req.Body))
	case models.PlatformTikTok:
		return v.checkTikTok(req.Header.Get(HeaderTikTokSignature), req.Body)
	default:
		return true, ""
	}
}

func checkPrefixed(header, name, expected string) (bool, string) {
	if header == "" {
		return false, name + " header required"
	}
	got, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false, "unsupported signature scheme"
	}
	if !hmac.Equal([]byte(got), []byte(expected)) {
		return false, "signature verification failed"
	}
	return true, ""
}

func (v *Verifier) checkTikTok(header string, body []byte) (bool, string) {
	if header == "" {
		return false, HeaderTikTokSignature + " header required"
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "t":
			ts = value
		case "s":
			sig = value
		}
	}
	if ts == "" || sig == "" {
		return false, "malformed signature header"
	}

	if v.cfg.TikTokTolerance > 0 {
		unix, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return false, "malformed signature timestamp"
		}
		age := v.now().Sub(time.Unix(unix, 0))
		if age > v.cfg.TikTokTolerance || age < -v.cfg.TikTokTolerance {
			return false, "signature timestamp outside tolerance"
		}
	}

	if !hmac.Equal([]byte(sig), []byte(TikTokSignature(v.cfg.TikTokClientSecret, ts, body))) {
		return false, "signature verification failed"
	}
	return true, ""
}

// TwitterSignature is base64(HMAC-SHA256(secret, body)).
func TwitterSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// MetaSignature is hex(HMAC-SHA256(appSecret, body)).
func MetaSignature(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// TikTokSignature is hex(HMAC-SHA256(secret, ts + "." + body)).
func TikTokSignature(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
