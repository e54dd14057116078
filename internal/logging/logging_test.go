// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("info", "json", &buf)

	New("pipeline").Info("stage complete", "stage", "admissibility")

	out := buf.String()
	if !strings.Contains(out, `"component":"pipeline"`) {
		t.Errorf("expected component attribute in output, got %q", out)
	}
	if !strings.Contains(out, `"stage":"admissibility"`) {
		t.Errorf("expected stage attribute in output, got %q", out)
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", "text", &buf)

	New("test").Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got %q", buf.String())
	}

	New("test").Warn("should appear")
	if buf.Len() == 0 {
		t.Error("warn record should pass at warn level")
	}
}
