// World Cleanup Day - Trashpoint Storage and Map Overview Clustering
// Copyright 2026 The World Cleanup Day Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kublaj/World-Cleanup-Day

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.Warn("service restarted", "service", "sweeper", "failures", 2)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"service":"sweeper"`, `"failures":2`, `"message":"service restarted"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_GroupPrefixOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.WithGroup("outer").WithGroup("inner").Info("x", "k", "v")

	if !strings.Contains(buf.String(), `"outer.inner.k":"v"`) {
		t.Errorf("expected outer.inner.k key, got %s", buf.String())
	}
}

func TestSlogHandler_WithAttrsDoesNotMutateParent(t *testing.T) {
	t.Parallel()

	parent := NewSlogHandlerWithLogger(zerolog.Nop())
	child := parent.WithAttrs([]slog.Attr{slog.String("a", "1")})

	if len(parent.attrs) != 0 {
		t.Errorf("parent attrs = %d, want 0", len(parent.attrs))
	}
	if got := len(child.(*SlogHandler).attrs); got != 1 {
		t.Errorf("child attrs = %d, want 1", got)
	}
	if parent.WithGroup("") != parent {
		t.Error("WithGroup(\"\") should return the receiver")
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.Nop().Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled on a warn logger")
	}

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
