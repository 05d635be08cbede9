package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, "debug", "json")
	if err != nil {
		t.Fatalf("NewWithOutput() error = %v", err)
	}
	WithTurn(logger, "conv-1", "jane@example.com").Info("turn handled")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if line["conversation_id"] != "conv-1" {
		t.Fatalf("conversation_id = %v, want conv-1", line["conversation_id"])
	}
	if strings.Contains(buf.String(), "jane@example.com") {
		t.Fatalf("log line leaks email: %s", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := NewWithOutput(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Fatalf("NewWithOutput() error = nil, want error")
	}
	if _, err := NewWithOutput(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Fatalf("NewWithOutput() error = nil for bad level, want error")
	}
}
