package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInit_Levels(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf})

	Debug("debug message")
	Info("info message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug should be suppressed at default level")
	}
	if !strings.Contains(out, "info message") {
		t.Error("info should be logged at default level")
	}
}

func TestInit_Debug(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Debug: true, Output: &buf})

	Debug("debug message", "key", "value")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug should be logged when enabled")
	}
}

func TestInit_Quiet(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Quiet: true, Output: &buf})

	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	if strings.Contains(out, "info message") || strings.Contains(out, "warn message") {
		t.Error("quiet mode should suppress info and warn")
	}
	if !strings.Contains(out, "error message") {
		t.Error("quiet mode should still log errors")
	}
}

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{JSON: true, Output: &buf})

	Info("structured", "url", "https://example.com")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("JSON output is not valid JSON: %v", err)
	}
	if entry["msg"] != "structured" {
		t.Errorf("expected msg field, got %v", entry)
	}
	if entry["url"] != "https://example.com" {
		t.Errorf("expected url attribute, got %v", entry)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Output: &buf})

	With("component", "test").Info("scoped message")
	out := buf.String()
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected bound attribute, got %q", out)
	}
}
