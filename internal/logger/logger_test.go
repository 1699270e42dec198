package logger

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
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestWithContextAddsUser(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	var buf bytes.Buffer
	defaultLogger = slog.New(slog.NewTextHandler(&buf, nil))

	WithContext(ContextWithUser(context.Background(), 42)).Info("collected")
	WithContext(context.Background()).Info("anonymous")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "user_id=42") {
		t.Fatalf("missing user_id: %s", lines[0])
	}
	if strings.Contains(lines[1], "user_id") {
		t.Fatalf("unexpected user_id: %s", lines[1])
	}
}
