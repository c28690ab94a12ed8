// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if cfg.NoTimestamp {
		t.Error("expected timestamps by default")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:   "debug",
		Service: "world-cleanup-day",
		Version: "1.2.3",
		Output:  &buf,
	})
	defer Init(DefaultConfig())

	Info().Msg("test message")
	Debug().Msg("debug message")

	output := buf.String()
	for _, want := range []string{
		"test message",
		"debug message",
		`"level":"info"`,
		`"service":"world-cleanup-day"`,
		`"version":"1.2.3"`,
		`"time":`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %s: %s", want, output)
		}
	}
}

func TestInit_NoTimestampAndLevel(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "warn", NoTimestamp: true, Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("dropped")
	Warn().Msg("kept")

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Errorf("info event written at warn level: %s", output)
	}
	if !strings.Contains(output, "kept") || strings.Contains(output, `"time":`) {
		t.Errorf("output = %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	for _, lvl := range []string{"trace", "debug", "INFO", "warn", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false, want true", lvl)
		}
	}
	for _, lvl := range []string{"", "loud", "verbose"} {
		if ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = true, want false", lvl)
		}
	}
}

func TestCtxAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithRequestID(ctx, "req-42")

	Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"correlation_id":"corr1234"`) {
		t.Errorf("missing correlation_id in %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-42"`) {
		t.Errorf("missing request_id in %s", out)
	}
}

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	a, b := GenerateCorrelationID(), GenerateCorrelationID()
	if len(a) != 8 {
		t.Errorf("correlation id length = %d, want 8", len(a))
	}
	if a == b {
		t.Errorf("two correlation ids should differ, both %q", a)
	}
}

func TestStoreEventLogger(t *testing.T) {
	var buf bytes.Buffer
	ev := NewStoreEventLoggerWithLogger(NewTestLogger(&buf).Level(zerolog.TraceLevel), "mutation")
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(prev)

	ctx := ContextWithRequestID(context.Background(), "r1")
	ev.LogRevisionConflict(ctx, "session", "s1", 2)
	ev.LogMutationExhausted(ctx, "session", "s1", 3)
	ev.LogOverSelected(ctx, "grid3", 4, 0)
	ev.LogIndexShape(ctx, "grid3", errors.New("bad row"))
	ev.LogSessionSweep(2, time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		`"component":"mutation"`,
		`"message":"revision conflict"`,
		`"attempts":3`,
		`"error":"bad row"`,
		`"removed":2`,
		`"request_id":"r1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, "over-selected") {
		t.Errorf("LogOverSelected with zero dropped rows should be silent:\n%s", out)
	}
}
