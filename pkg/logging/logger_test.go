package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	old := Logger()
	t.Cleanup(func() { SetLogger(old) })

	buf := &bytes.Buffer{}
	Init(Config{Level: level, Format: "json", Output: buf})
	return buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
		{"disabled", zerolog.Disabled},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureJSON(t, "warn")

	Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info message written at warn level: %s", buf.String())
	}
	Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("warn message not written")
	}
}

func TestCtxAddsRunID(t *testing.T) {
	buf := captureJSON(t, "info")

	ctx := ContextWithRunID(context.Background(), "abc12345")
	Ctx(ctx).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (%s)", err, buf.String())
	}
	if entry["run_id"] != "abc12345" {
		t.Errorf("run_id = %v, want abc12345", entry["run_id"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureJSON(t, "info")

	l := WithComponent("hybrid")
	l.Info().Msg("x")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["component"] != "hybrid" {
		t.Errorf("component = %v, want hybrid", entry["component"])
	}
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	if len(id) != 8 {
		t.Errorf("len(NewRunID()) = %d, want 8", len(id))
	}
	if RunIDFromContext(context.Background()) != "" {
		t.Error("empty context should have no run id")
	}
	if got := RunIDFromContext(ContextWithNewRunID(context.Background())); len(got) != 8 {
		t.Errorf("ContextWithNewRunID produced %q", got)
	}
}

func TestCtxComponent(t *testing.T) {
	buf := captureJSON(t, "info")

	l := CtxComponent(ContextWithRunID(context.Background(), "run00001"), "similarity")
	l.Info().Msg("built")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["component"] != "similarity" || entry["run_id"] != "run00001" {
		t.Errorf("entry = %v, want component=similarity run_id=run00001", entry)
	}
}
