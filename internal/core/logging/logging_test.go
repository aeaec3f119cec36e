package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("json format emits JSON records", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(&buf, slog.LevelInfo, FormatJSON)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		log.Info("hello", "namespace", "signup")

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if record["msg"] != "hello" || record["namespace"] != "signup" {
			t.Errorf("unexpected record: %v", record)
		}
	})

	t.Run("text format emits key=value", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(&buf, slog.LevelInfo, FormatText)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		log.Info("hello")
		if !strings.Contains(buf.String(), "msg=hello") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := New(&buf, slog.LevelWarn, FormatJSON)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		log.Info("dropped")
		if buf.Len() != 0 {
			t.Errorf("info record should be filtered, got %s", buf.String())
		}
	})

	t.Run("unknown format is an error", func(t *testing.T) {
		if _, err := New(&bytes.Buffer{}, slog.LevelInfo, "yaml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
