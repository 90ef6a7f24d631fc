package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_JSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "calendar"})

	log.Info("slot created", "slot_id", "abc")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record[SERVICE] != "calendar" {
		t.Errorf("expected service attr 'calendar', got %v", record[SERVICE])
	}
	if record["slot_id"] != "abc" {
		t.Errorf("expected slot_id attr 'abc', got %v", record["slot_id"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Format: TEXT})

	log.Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected text handler output, got %q", buf.String())
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Level: WARN})

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}

	log.With("component", "test").Warn("kept")
	if !strings.Contains(buf.String(), `"component":"test"`) {
		t.Errorf("expected With attributes on record, got %q", buf.String())
	}
}
