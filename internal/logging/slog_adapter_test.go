// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandler(zerolog.New(&buf)))

	slogger.Warn("service restarted", "service", "recompute", "attempt", 3, "backoff", time.Second)

	output := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"service":"recompute"`,
		`"attempt":3`,
		"service restarted",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandler(zerolog.New(&buf))).
		With("layer", "data").
		WithGroup("tree")

	slogger.Info("child added", "name", "http")

	output := buf.String()
	if !strings.Contains(output, `"layer":"data"`) || strings.Contains(output, `"tree.layer"`) {
		t.Errorf("expected layer attribute in output: %s", output)
	}
	if !strings.Contains(output, `"tree.name":"http"`) {
		t.Errorf("expected grouped attribute in output: %s", output)
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	t.Parallel()

	handler := NewSlogHandler(zerolog.New(nil).Level(zerolog.WarnLevel))

	if handler.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected info to be disabled for warn-level logger")
	}
	if !handler.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected error to be enabled for warn-level logger")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

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
