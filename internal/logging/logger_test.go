package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestForSessionTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	logger := ForSession(NewWithWriter(&buf, "debug"), "s-1")
	logger.Info("status message", "severity", "success")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["session_id"] != "s-1" || line["severity"] != "success" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestForSessionKeepsNil(t *testing.T) {
	if ForSession(nil, "s-1") != nil {
		t.Fatal("expected nil logger to stay nil")
	}
}

func TestNewWithWriterFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "verbose")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed at info level, got %q", buf.String())
	}
}
