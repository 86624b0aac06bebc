package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}

	for in, want := range cases {
		got := parseLevel(in)
		if got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestComponentLoggerAddsCycleID(t *testing.T) {
	var buf bytes.Buffer
	base := New(LogConfig{Level: "debug", Output: &buf})
	log := Component(base, "monitor")

	ctx := WithCycleID(context.Background(), "cycle-123")
	log.Info(ctx, "tick started", "items", 2)

	out := buf.String()
	for _, want := range []string{"component=monitor", "cycle_id=cycle-123", "items=2", "tick started"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestComponentLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(LogConfig{Level: "warn", Output: &buf}), "graph")
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	log.Warn(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestComponentNilBase(t *testing.T) {
	log := Component(nil, "x")
	log.Error(context.Background(), "dropped")
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc" {
		t.Fatalf("Truncate = %q, want abc", got)
	}
	if got := Truncate("ação", 2); got != "aç" {
		t.Fatalf("Truncate runes = %q, want aç", got)
	}
	if got := Truncate("ab", 5); got != "ab" {
		t.Fatalf("Truncate short = %q", got)
	}
}
