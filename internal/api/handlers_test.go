// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/socialpulse/internal/config"
	"github.com/tomtom215/socialpulse/internal/ingest"
	"github.com/tomtom215/socialpulse/internal/models"
	"github.com/tomtom215/socialpulse/internal/store"
	"github.com/tomtom215/socialpulse/internal/webhook"
	ws "github.com/tomtom215/socialpulse/internal/websocket"
)

const (
	testMetaToken  = "verify-me"
	testMetaSecret = "meta-secret"
	testTwSecret   = "twitter-secret"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{MaxBodyBytes: 1 << 20},
		Ingest: config.IngestConfig{
			AttributionTimeout:   50 * time.Millisecond,
			AttributionCacheSize: 100,
			AttributionCacheTTL:  time.Minute,
			BatchConcurrency:     8,
		},
		Breaker:  config.BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 5},
		Security: config.SecurityConfig{RateLimitDisabled: true},
		Stream:   config.StreamConfig{Enabled: true, PingInterval: time.Second},
	}
}

type testServer struct {
	mem     *store.Memory
	handler http.Handler
}

func newTestServer(t *testing.T, verifySignatures bool, hub *ws.Hub) *testServer {
	t.Helper()
	cfg := testConfig()
	mem := store.NewMemory()
	t.Cleanup(func() { mem.Close() })

	coord := ingest.NewCoordinator(mem, ingest.NewResolver(mem, &cfg.Ingest, &cfg.Breaker), &cfg.Ingest)
	verifiers := webhook.NewSet(webhook.Config{
		TwitterConsumerSecret: testTwSecret,
		MetaVerifyToken:       testMetaToken,
		MetaAppSecret:         testMetaSecret,
		VerifySignatures:      verifySignatures,
	})
	h := NewHandler(coord, mem, mem, verifiers, hub, cfg)
	router := NewRouter(h, NewChiMiddleware(ChiMiddlewareConfigFrom(&cfg.Security)))
	return &testServer{mem: mem, handler: router.SetupChi()}
}

func (s *testServer) do(t *testing.T, method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func draftJSON(platform, rawID string, at time.Time) map[string]any {
	d := map[string]any{
		"type":     "engagement",
		"platform": platform,
		"actor":    map[string]any{"platform_user_id": "u1", "username": "alice"},
		"subject": map[string]any{
			"content_id":        "c1",
			"content_type":      "post",
			"owner_platform_id": "o1",
		},
		"metrics":   map[string]any{"count": 1},
		"metadata":  map[string]any{"source": "api"},
		"timestamp": at.UTC().Format(time.RFC3339),
	}
	if rawID != "" {
		d["metadata"].(map[string]any)["raw_event_id"] = rawID
	}
	return d
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

// ============================================================================
// POST /ingest
// ============================================================================

func TestIngest_CreatesAndReadsBack(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	if err := s.mem.LinkAccount(context.Background(), models.PlatformTwitter, "o1", "user-42"); err != nil {
		t.Fatalf("LinkAccount: %v", err)
	}

	w := s.do(t, http.MethodPost, "/ingest", mustJSON(t, draftJSON("twitter", "", time.Now().Add(-time.Hour))), nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created IngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.EventID == "" {
		t.Fatal("Expected an event_id")
	}
	if _, err := models.ParseTimestamp(created.IngestedAt); err != nil {
		t.Errorf("Expected ingested_at to be RFC 3339, got %q", created.IngestedAt)
	}

	w = s.do(t, http.MethodGet, "/"+created.EventID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var got models.Event
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if got.ID != created.EventID {
		t.Errorf("Expected id %s, got %s", created.EventID, got.ID)
	}
	if got.AttributedUserID != "user-42" {
		t.Errorf("Expected attribution user-42, got %q", got.AttributedUserID)
	}
}

func TestIngest_Rejections(t *testing.T) {
	t.Parallel()

	future := draftJSON("twitter", "", time.Now().Add(time.Hour))
	badType := draftJSON("twitter", "", time.Now().Add(-time.Hour))
	badType["type"] = "like"
	noActor := draftJSON("twitter", "", time.Now().Add(-time.Hour))
	delete(noActor, "actor")
	stringCount := draftJSON("twitter", "", time.Now().Add(-time.Hour))
	stringCount["metrics"] = map[string]any{"count": "five"}

	tests := []struct {
		name      string
		body      []byte
		wantCode  string
		wantField string
	}{
		{"future timestamp", mustJSON(t, future), ErrCodeValidation, "timestamp"},
		{"unknown type", mustJSON(t, badType), ErrCodeValidation, "type"},
		{"missing actor", mustJSON(t, noActor), ErrCodeValidation, "actor"},
		{"string count", mustJSON(t, stringCount), ErrCodeValidation, "metrics.count"},
		{"malformed json", []byte(`{"type":`), ErrCodeBadRequest, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, false, nil)
			w := s.do(t, http.MethodPost, "/ingest", tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			body := decodeError(t, w)
			if body.Error != tt.wantCode {
				t.Errorf("Expected error %s, got %s", tt.wantCode, body.Error)
			}
			if body.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, body.Field)
			}
		})
	}
}

func TestIngest_DuplicateRawEventConflicts(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)
	body := mustJSON(t, draftJSON("tiktok", "raw-1", time.Now().Add(-time.Hour)))

	if w := s.do(t, http.MethodPost, "/ingest", body, nil); w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", w.Code)
	}
	w := s.do(t, http.MethodPost, "/ingest", body, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeError(t, w).Error; got != ErrCodeDuplicateRaw {
		t.Errorf("Expected %s, got %s", ErrCodeDuplicateRaw, got)
	}
}

// ============================================================================
// POST /ingest/batch
// ============================================================================

func TestIngestBatch_PartialFailure(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	good := draftJSON("youtube", "", time.Now().Add(-time.Hour))
	bad := draftJSON("youtube", "", time.Now().Add(-time.Hour))
	bad["subject"] = map[string]any{"content_id": "c1", "content_type": "tweet", "owner_platform_id": "o1"}
	noMetadata := draftJSON("youtube", "", time.Now().Add(-time.Hour))
	delete(noMetadata, "metadata")

	body := mustJSON(t, map[string]any{"events": []any{good, bad, good, noMetadata}})
	w := s.do(t, http.MethodPost, "/ingest/batch", body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Successful) != 2 {
		t.Errorf("Expected 2 successful, got %d", len(resp.Successful))
	}
	if len(resp.Failed) != 2 {
		t.Fatalf("Expected 2 failed, got %d", len(resp.Failed))
	}
	if resp.Failed[0].Index != 1 || resp.Failed[1].Index != 3 {
		t.Errorf("Expected failed indices [1 3], got [%d %d]", resp.Failed[0].Index, resp.Failed[1].Index)
	}
	if resp.Failed[0].Error.Field != "subject.content_type" {
		t.Errorf("Expected field subject.content_type, got %q", resp.Failed[0].Error.Field)
	}
	if resp.Failed[1].Error.Field != "metadata" {
		t.Errorf("Expected field metadata, got %q", resp.Failed[1].Error.Field)
	}
	if resp.Failed[0].Draft == nil {
		t.Error("Expected the failed draft to be echoed back")
	}
}

func TestIngestBatch_SizeLimits(t *testing.T) {
	t.Parallel()

	one := draftJSON("facebook", "", time.Now().Add(-time.Hour))
	tooMany := make([]any, 1001)
	for i := range tooMany {
		tooMany[i] = one
	}

	tests := []struct {
		name   string
		events []any
	}{
		{"empty", []any{}},
		{"over limit", tooMany},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, false, nil)
			w := s.do(t, http.MethodPost, "/ingest/batch", mustJSON(t, map[string]any{"events": tt.events}), nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", w.Code)
			}
			if got := decodeError(t, w).Field; got != "events" {
				t.Errorf("Expected field events, got %q", got)
			}
		})
	}
}

// ============================================================================
// Reads and refused mutations
// ============================================================================

func TestGetEvent_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	w := s.do(t, http.MethodGet, "/does-not-exist", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if got := decodeError(t, w).Error; got != ErrCodeNotFound {
		t.Errorf("Expected %s, got %s", ErrCodeNotFound, got)
	}
}

func TestMutations_AlwaysForbidden(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	w := s.do(t, http.MethodPost, "/ingest", mustJSON(t, draftJSON("threads", "", time.Now().Add(-time.Hour))), nil)
	var created IngestResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		for _, id := range []string{created.EventID, "missing"} {
			t.Run(method+" "+id, func(t *testing.T) {
				w := s.do(t, method, "/"+id, []byte(`{"type":"share"}`), nil)
				if w.Code != http.StatusForbidden {
					t.Fatalf("Expected 403, got %d", w.Code)
				}
				if got := decodeError(t, w).Error; got != ErrCodeImmutability {
					t.Errorf("Expected %s, got %s", ErrCodeImmutability, got)
				}
			})
		}
	}

	w = s.do(t, http.MethodGet, "/"+created.EventID, nil, nil)
	var got models.Event
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != models.EventTypeEngagement {
		t.Errorf("Expected stored type to be unchanged, got %s", got.Type)
	}
}

func TestListByPlatform_Pagination(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	base := time.Now().Add(-3 * time.Hour)
	for i := 0; i < 3; i++ {
		d := draftJSON("instagram", fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute))
		if w := s.do(t, http.MethodPost, "/ingest", mustJSON(t, d), nil); w.Code != http.StatusCreated {
			t.Fatalf("seed %d: expected 201, got %d", i, w.Code)
		}
	}
	other := draftJSON("twitter", "", base)
	s.do(t, http.MethodPost, "/ingest", mustJSON(t, other), nil)

	w := s.do(t, http.MethodGet, "/platform/instagram?limit=2&page=1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var page EventsPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Pagination.Total != 3 || page.Pagination.TotalPages != 2 {
		t.Errorf("Expected total 3 over 2 pages, got %+v", page.Pagination)
	}
	if len(page.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(page.Events))
	}
	if page.Events[0].Metadata.RawEventID != "r2" {
		t.Errorf("Expected newest first, got %s", page.Events[0].Metadata.RawEventID)
	}

	w = s.do(t, http.MethodGet, "/platform/instagram?limit=2&page=2", nil, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Events) != 1 || page.Events[0].Metadata.RawEventID != "r0" {
		t.Errorf("Expected only r0 on page 2, got %d events", len(page.Events))
	}
}

func TestListByPlatform_BadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		target    string
		wantField string
	}{
		{"unknown platform", "/platform/myspace", "platform"},
		{"limit zero", "/platform/twitter?limit=0", "limit"},
		{"limit too large", "/platform/twitter?limit=1001", "limit"},
		{"limit not a number", "/platform/twitter?limit=ten", "limit"},
		{"page zero", "/platform/twitter?page=0", "page"},
		{"bad start", "/platform/twitter?startDate=yesterday", "startDate"},
		{"end before start", "/platform/twitter?startDate=2026-02-01&endDate=2026-01-01", "endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, false, nil)
			w := s.do(t, http.MethodGet, tt.target, nil, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d", w.Code)
			}
			if got := decodeError(t, w).Field; got != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, got)
			}
		})
	}
}

func TestGetRollup(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	at := time.Now().UTC()
	if err := s.mem.ApplyRollup(context.Background(), "user-7", models.PlatformYouTube, 1, at); err != nil {
		t.Fatalf("ApplyRollup: %v", err)
	}
	w := s.do(t, http.MethodGet, "/rollups/user-7", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var summary store.RollupSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Total != 1 {
		t.Errorf("Expected total 1, got %d", summary.Total)
	}
}

// ============================================================================
// Webhooks
// ============================================================================

func TestWebhook_TwitterCRC(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, true, nil)

	w := s.do(t, http.MethodGet, "/webhooks/twitter?crc_token=abc", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "sha256=" + webhook.CRCResponse(testTwSecret, "abc")
	if body["response_token"] != want {
		t.Errorf("Expected %s, got %s", want, body["response_token"])
	}
}

func TestWebhook_MetaHandshake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    string
		wantCode int
		wantBody string
	}{
		{"matching token echoes challenge", testMetaToken, http.StatusOK, "ch-1"},
		{"wrong token", "nope", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, true, nil)
			target := "/webhooks/instagram?hub.mode=subscribe&hub.verify_token=" + tt.token + "&hub.challenge=ch-1"
			w := s.do(t, http.MethodGet, target, nil, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("Expected body %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func instagramDelivery(id string) []byte {
	return []byte(`{"id":"` + id + `","engagement_type":"like","media":{"id":"m1","media_type":"IMAGE","owner":{"id":"o1"}},"user":{"id":"u1","username":"x"}}`)
}

func TestWebhook_SignedDelivery(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, true, nil)

	body := []byte("[" + string(instagramDelivery("d1")) + `,{"media":{"id":"m2"}}]`)
	header := http.Header{}
	header.Set(webhook.HeaderMetaSignature, "sha256="+webhook.MetaSignature(testMetaSecret, body))
	header.Set("User-Agent", "facebookexternalua")

	w := s.do(t, http.MethodPost, "/webhooks/instagram", body, header)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var ack WebhookAck
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ack.Received != 2 || ack.Accepted != 1 {
		t.Errorf("Expected received 2 accepted 1, got %+v", ack)
	}

	page, err := s.mem.ListByPlatform(context.Background(), store.PlatformQuery{Platform: models.PlatformInstagram})
	if err != nil {
		t.Fatalf("ListByPlatform: %v", err)
	}
	if len(page.Events) != 1 {
		t.Fatalf("Expected 1 stored event, got %d", len(page.Events))
	}
	e := page.Events[0]
	if e.Metadata.Source != models.SourceWebhook {
		t.Errorf("Expected source webhook, got %s", e.Metadata.Source)
	}
	if e.Metadata.IsVerified == nil || !*e.Metadata.IsVerified {
		t.Error("Expected is_verified to be true")
	}
	if e.Metadata.UserAgent != "facebookexternalua" {
		t.Errorf("Expected user agent to be recorded, got %q", e.Metadata.UserAgent)
	}
}

func TestWebhook_RedeliveryIsAcknowledged(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)
	body := instagramDelivery("d9")

	for i, wantAccepted := range []int{1, 0} {
		w := s.do(t, http.MethodPost, "/webhooks/instagram", body, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d", i, w.Code)
		}
		var ack WebhookAck
		if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ack.Accepted != wantAccepted {
			t.Errorf("delivery %d: expected accepted %d, got %d", i, wantAccepted, ack.Accepted)
		}
	}
}

func TestWebhook_Rejections(t *testing.T) {
	t.Parallel()

	body := instagramDelivery("d2")
	tests := []struct {
		name     string
		target   string
		body     []byte
		sig      string
		wantCode int
	}{
		{"missing signature", "/webhooks/instagram", body, "", http.StatusUnauthorized},
		{"wrong signature", "/webhooks/instagram", body, "sha256=" + webhook.MetaSignature("other", body), http.StatusUnauthorized},
		{"unknown platform", "/webhooks/myspace", body, "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, true, nil)
			header := http.Header{}
			if tt.sig != "" {
				header.Set(webhook.HeaderMetaSignature, tt.sig)
			}
			w := s.do(t, http.MethodPost, tt.target, tt.body, header)
			if w.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestWebhook_MalformedBodyIsAcknowledged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		target string
		body   []byte
		sign   bool
	}{
		{"signed non-json post", http.MethodPost, "/webhooks/instagram", []byte("oops"), true},
		{"truncated array", http.MethodPost, "/webhooks/instagram", []byte(`[{"id":"x"`), true},
		{"bodyless tiktok get", http.MethodGet, "/webhooks/tiktok", nil, false},
		{"empty tiktok post", http.MethodPost, "/webhooks/tiktok", []byte{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestServer(t, true, nil)
			header := http.Header{}
			if tt.sign {
				header.Set(webhook.HeaderMetaSignature, "sha256="+webhook.MetaSignature(testMetaSecret, tt.body))
			}
			w := s.do(t, tt.method, tt.target, tt.body, header)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
			}
			var ack WebhookAck
			if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if ack.Received != 0 || ack.Accepted != 0 {
				t.Errorf("Expected received 0 accepted 0, got %+v", ack)
			}
		})
	}
}

// ============================================================================
// Stream and metrics
// ============================================================================

func TestStream_DisabledWithoutHub(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	w := s.do(t, http.MethodGet, "/stream", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", w.Code)
	}
}

func TestStream_UnknownPlatform(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, ws.NewHub())

	w := s.do(t, http.MethodGet, "/stream?platform=myspace", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, false, nil)

	w := s.do(t, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "# TYPE") {
		t.Error("Expected Prometheus exposition format")
	}
}
