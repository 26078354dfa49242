package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		level Level
		ok    bool
	}{
		{"debug", LevelDebug, true},
		{"DEBUG", LevelDebug, true},
		{"info", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"WARN", LevelWarn, true},
		{"error", LevelError, true},
		{"loud", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.input)
		if level != tt.level || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.input, level, ok, tt.level, tt.ok)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Info("hidden")
	l.Warn("shown %d", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown 7") {
		t.Errorf("warn message missing: %s", out)
	}

	l.SetLevel(LevelDebug)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("SetLevel(LevelDebug) did not enable debug output")
	}
}

func TestLoggerFieldsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Format: "json", Prefix: "bs"})

	l.WithComponent("session").WithFields(map[string]any{"pause": 3, "call": "c1"}).Info("paused")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	want := map[string]any{"msg": "paused", "app": "bs", "component": "session", "pause": 3.0, "call": "c1"}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("record[%q] = %v, want %v", k, rec[k], v)
		}
	}
}

func TestLoggerDerivedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := New(Config{Level: LevelError, Output: &buf})
	child := root.WithField("k", "v")

	root.SetLevel(LevelInfo)
	child.Info("from child")
	if !strings.Contains(buf.String(), "from child") {
		t.Error("derived logger did not follow the root level")
	}
}

func TestNopAndNil(t *testing.T) {
	var nilLogger *Logger
	for _, l := range []*Logger{Nop(), nilLogger} {
		l.Info("ignored")
		l.WithField("a", 1).Error("ignored")
		l.SetLevel(LevelDebug)
		if l.Enabled(LevelError) {
			t.Error("Enabled() = true on a discarding logger")
		}
		if l.Slog() == nil {
			t.Error("Slog() = nil")
		}
	}
}
