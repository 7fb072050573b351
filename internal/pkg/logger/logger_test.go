package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithOutput(&buf)

	log.Info("sale committed", "sale_id", "sale_1", "total_cents", 4142)

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry.Level != "INFO" || entry.Message != "sale committed" {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	fields, ok := entry.Fields.(map[string]interface{})
	if !ok {
		t.Fatalf("expected fields map, got %T", entry.Fields)
	}
	if fields["sale_id"] != "sale_1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestLoggerWithFieldBindsToEveryLine(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithOutput(&buf).WithField("component", "engine")

	log.Warn("commit conflicted")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	fields, ok := entry.Fields.(map[string]interface{})
	if !ok {
		t.Fatalf("expected bound field to be emitted, got %+v", entry)
	}
	if fields["component"] != "engine" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestLoggerOddFieldCountDropped(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithOutput(&buf)

	log.Info("message", "dangling")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if entry.Fields != nil {
		t.Fatalf("expected no fields for odd-length pairs, got %v", entry.Fields)
	}
}
