package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"tint", FormatText},
		{"human", FormatText},
		{"", FormatAuto},
		{"yaml", FormatAuto},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandlerAutoIsJSONWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, FormatAuto, slog.LevelInfo))
	logger.Info("paste keystroke sent", "component", "injection", "strategy", "xtest")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if rec["component"] != "injection" || rec["strategy"] != "xtest" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewHandlerRespectsLevelVar(t *testing.T) {
	var buf bytes.Buffer
	var lv slog.LevelVar
	lv.Set(slog.LevelWarn)
	logger := slog.New(NewHandler(&buf, FormatJSON, &lv))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}

	lv.Set(slog.LevelDebug)
	logger.Debug("shown")
	if buf.Len() == 0 {
		t.Errorf("debug not logged after lowering the level")
	}
}

func TestTextFormatIsNotJSON(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, FormatText, slog.LevelInfo)).Info("hello")
	if json.Valid(buf.Bytes()) {
		t.Errorf("text format produced JSON: %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("output missing message: %q", buf.String())
	}
}

func TestIsTTYNonFile(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Errorf("buffer reported as TTY")
	}
}
