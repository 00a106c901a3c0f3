// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/logging"
	"github.com/tomtom215/socialpulse/internal/models"
)

// State is where a webhook exchange sits in the subscription lifecycle.
type State int

const (
	// StateAwaitingVerification covers GET handshakes that prove endpoint
	// ownership to the platform.
	StateAwaitingVerification State = iota
	// StateAwaitingNotification covers deliveries carrying activity.
	StateAwaitingNotification
)

func (s State) String() string {
	switch s {
	case StateAwaitingVerification:
		return "awaiting_verification"
	case StateAwaitingNotification:
		return "awaiting_notification"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request is the transport-independent view of an inbound webhook call.
type Request struct {
	Method string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Decision tells the transport what to do with a request. When Proceed is
// false the transport writes Status, ContentType and Body verbatim. When it
// is true the body should be normalized and ingested.
type Decision struct {
	State       State
	Proceed     bool
	Status      int
	ContentType string
	Body        []byte

	// Verified is true when a delivery signature was checked and matched.
	Verified bool
}

// Config holds the per-platform shared secrets. An empty secret disables
// signature checks for the platforms it covers; their deliveries are
// ingested unverified. An empty Twitter secret also refuses CRC checks.
type Config struct {
	TwitterConsumerSecret string
	MetaVerifyToken       string
	MetaAppSecret         string
	TikTokClientSecret    string

	// VerifySignatures rejects notifications whose signature header is
	// missing or wrong.
	VerifySignatures bool

	// TikTokTolerance bounds the age of a TikTok signature timestamp.
	// Zero disables the replay window.
	TikTokTolerance time.Duration
}

// Verifier runs the handshake and delivery checks for one platform. It never
// touches storage.
type Verifier struct {
	platform models.Platform
	cfg      Config
	now      func() time.Time

	unsignedOnce sync.Once
}

// New returns the verifier for p.
func New(p models.Platform, cfg Config) (*Verifier, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("webhook: unsupported platform %q", p)
	}
	return &Verifier{platform: p, cfg: cfg, now: time.Now}, nil
}

// Platform returns the platform this verifier serves.
func (v *Verifier) Platform() models.Platform {
	return v.platform
}

// Handle advances the state machine for one request.
func (v *Verifier) Handle(req Request) Decision {
	if v.platform == models.PlatformTikTok {
		// No subscription handshake exists; every call is a delivery.
		return v.notification(req)
	}

	switch req.Method {
	case http.MethodGet, http.MethodHead:
		return v.verification(req)
	case http.MethodPost:
		return v.notification(req)
	default:
		return reject(StateAwaitingNotification, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (v *Verifier) verification(req Request) Decision {
	switch v.platform {
	case models.PlatformTwitter:
		return v.twitterCRC(req.Query)
	case models.PlatformInstagram, models.PlatformFacebook, models.PlatformThreads:
		return v.metaHub(req.Query)
	case models.PlatformYouTube:
		return youtubeChallenge(req.Query)
	default:
		return reject(StateAwaitingVerification, http.StatusBadRequest, "no handshake for platform")
	}
}

func (v *Verifier) notification(req Request) Decision {
	d := Decision{State: StateAwaitingNotification, Proceed: true, Status: http.StatusOK}
	if !v.cfg.VerifySignatures {
		return d
	}

	if v.platform == models.PlatformYouTube {
		// Hub deliveries carry no signature to check.
		return d
	}
	if v.signingSecret() == "" {
		v.unsignedOnce.Do(func() {
			logging.Warn().
				Str("platform", string(v.platform)).
				Msg("Webhook signing secret not configured, deliveries are accepted unverified")
		})
		return d
	}

	ok, reason := v.checkSignature(req)
	if !ok {
		return reject(StateAwaitingNotification, http.StatusUnauthorized, reason)
	}
	d.Verified = true
	return d
}

// signingSecret returns the shared secret that signs this platform's
// deliveries.
func (v *Verifier) signingSecret() string {
	switch v.platform {
	case models.PlatformTwitter:
		return v.cfg.TwitterConsumerSecret
	case models.PlatformInstagram, models.PlatformFacebook, models.PlatformThreads:
		return v.cfg.MetaAppSecret
	case models.PlatformTikTok:
		return v.cfg.TikTokClientSecret
	default:
		return ""
	}
}

// twitterCRC answers the Account Activity challenge-response check.
func (v *Verifier) twitterCRC(q url.Values) Decision {
	token := q.Get("crc_token")
	if token == "" {
		return reject(StateAwaitingVerification, http.StatusBadRequest, "crc_token is required")
	}
	if v.cfg.TwitterConsumerSecret == "" {
		logging.Warn().Msg("Twitter CRC check refused: consumer secret not configured")
		return reject(StateAwaitingVerification, http.StatusServiceUnavailable, "twitter consumer secret not configured")
	}
	body, err := json.Marshal(map[string]string{
		"response_token": "sha256=" + CRCResponse(v.cfg.TwitterConsumerSecret, token),
	})
	if err != nil {
		return reject(StateAwaitingVerification, http.StatusInternalServerError, "failed to encode response")
	}
	return Decision{
		State:       StateAwaitingVerification,
		Status:      http.StatusOK,
		ContentType: "application/json",
		Body:        body,
	}
}

// metaHub answers the Graph API subscription check shared by Instagram,
// Facebook and Threads.
func (v *Verifier) metaHub(q url.Values) Decision {
	if mode := q.Get("hub.mode"); mode != "" && mode != "subscribe" {
		return reject(StateAwaitingVerification, http.StatusBadRequest, "hub.mode must be subscribe")
	}
	token := q.Get("hub.verify_token")
	if v.cfg.MetaVerifyToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(v.cfg.MetaVerifyToken)) != 1 {
		return reject(StateAwaitingVerification, http.StatusForbidden, "verify token mismatch")
	}
	return echo(q.Get("hub.challenge"))
}

// youtubeChallenge answers a PubSubHubbub intent verification.
func youtubeChallenge(q url.Values) Decision {
	challenge := q.Get("hub.challenge")
	if challenge == "" {
		return reject(StateAwaitingVerification, http.StatusBadRequest, "hub.challenge is required")
	}
	return echo(challenge)
}

func echo(challenge string) Decision {
	return Decision{
		State:       StateAwaitingVerification,
		Status:      http.StatusOK,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(challenge),
	}
}

func reject(state State, status int, message string) Decision {
	body, _ := json.Marshal(map[string]string{"error": message})
	return Decision{
		State:       state,
		Status:      status,
		ContentType: "application/json",
		Body:        body,
	}
}

// CRCResponse computes base64(HMAC-SHA256(secret, token)), the value Twitter
// expects after the "sha256=" prefix.
func CRCResponse(secret, token string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Set holds one verifier per supported platform.
type Set struct {
	verifiers map[models.Platform]*Verifier
}

// NewSet builds verifiers for every platform from one config.
func NewSet(cfg Config) *Set {
	s := &Set{verifiers: make(map[models.Platform]*Verifier)}
	for _, p := range models.AllPlatforms() {
		v, _ := New(p, cfg)
		s.verifiers[p] = v
	}
	return s
}

// For returns the verifier for p, or false when p is unsupported.
func (s *Set) For(p models.Platform) (*Verifier, bool) {
	v, ok := s.verifiers[p]
	return v, ok
}
