// SocialPulse - Social Platform Engagement Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/socialpulse

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// captureGlobal swaps the global logger for one writing to a buffer. Tests
// using it must not run in parallel.
func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLogger := Logger()
	prevLevel := zerolog.GlobalLevel()
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() {
		SetLogger(prevLogger)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", line, err)
	}
	return m
}

// ============================================================================
// Logger
// ============================================================================

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	if !ValidLevel("warn") || !ValidLevel("") {
		t.Error("Expected warn and empty to be valid")
	}
	if ValidLevel("loud") {
		t.Error("Expected loud to be invalid")
	}
}

func TestInit_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})

	Init(Config{Level: "debug", Format: "json", Output: &buf})
	Info().Str("platform", "tiktok").Msg("hello")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["message"] != "hello" || m["platform"] != "tiktok" || m["level"] != "info" {
		t.Errorf("Unexpected entry: %v", m)
	}
	if _, ok := m["time"]; !ok {
		t.Error("Expected time field")
	}
}

func TestCtx_AddsIDs(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	Ctx(ctx).Info().Msg("with ids")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["request_id"] != "req-1" || m["correlation_id"] != "corr-1" {
		t.Errorf("Expected both ids, got %v", m)
	}
}

func TestContextIDs_Empty(t *testing.T) {
	t.Parallel()

	if RequestIDFromContext(context.Background()) != "" {
		t.Error("Expected empty request id")
	}
	if CorrelationIDFromContext(context.Background()) != "" {
		t.Error("Expected empty correlation id")
	}
	if len(GenerateCorrelationID()) != 8 {
		t.Error("Expected 8 character correlation id")
	}
	if len(GenerateRequestID()) != 36 {
		t.Error("Expected UUID request id")
	}
}

// ============================================================================
// Adapters
// ============================================================================

func TestSlogHandler(t *testing.T) {
	buf := captureGlobal(t)

	logger := NewSlogLogger().With("service", "router").WithGroup("req")
	logger.Warn("restarting", "attempt", 3, "err", errors.New("boom"))

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["level"] != "warn" {
		t.Errorf("Expected warn level, got %v", m["level"])
	}
	if m["service"] != "router" {
		t.Errorf("Expected service attr, got %v", m)
	}
	if m["req.attempt"] != float64(3) {
		t.Errorf("Expected grouped attempt, got %v", m)
	}
	if m["req.err"] != "boom" {
		t.Errorf("Expected grouped error, got %v", m)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	h := &SlogHandler{logger: NewTestLogger(&buf).Level(zerolog.WarnLevel)}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Expected error to be enabled at warn level")
	}
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	var adapter watermill.LoggerAdapter = NewWatermillAdapterWithLogger(NewTestLogger(&buf))
	adapter = adapter.With(watermill.LogFields{"topic": "events.ingested"})
	adapter.Error("handler failed", errors.New("nope"), watermill.LogFields{"message_uuid": "m1"})

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["level"] != "error" || m["error"] != "nope" {
		t.Errorf("Unexpected entry: %v", m)
	}
	if m["topic"] != "events.ingested" || m["message_uuid"] != "m1" {
		t.Errorf("Expected fields carried, got %v", m)
	}
}

// ============================================================================
// Sanitizing
// ============================================================================

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "jack", "jack"},
		{"newline", "a\nb", `a\x0ab`},
		{"delete", "x\x7f", `x\x7f`},
		{"unicode kept", "café", "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeValue(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	long := strings.Repeat("a", 300)
	if got := SanitizeValue(long); len(got) != maxLoggedValue+3 {
		t.Errorf("Expected truncation to %d, got %d", maxLoggedValue+3, len(got))
	}
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()

	if MaskSecret("") != "" || MaskSecret("short") != "***" {
		t.Error("Unexpected masking of short values")
	}
	if got := MaskSecret("abcd1234efgh5678"); got != "abcd...5678" {
		t.Errorf("Expected abcd...5678, got %s", got)
	}
}
