package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := parseLogLevel(raw).Level(); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newPrettyHandler(&buf, slog.LevelInfo)).WithGroup("req")
	logger.Debug("hidden")
	logger.Info("memo created", "id", 7, slog.Group("owner", "name", "alice"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered: %q", out)
	}
	for _, want := range []string{"INFO memo created", "  req.id: 7", "  req.owner.name: alice"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestTeeHandler(t *testing.T) {
	var info, debug bytes.Buffer
	tee := &teeHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}
	if !tee.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("tee should be enabled when any handler is")
	}
	logger := slog.New(tee)
	logger.Debug("only debug")
	logger.Info("both")
	if strings.Contains(info.String(), "only debug") || !strings.Contains(info.String(), "both") {
		t.Fatalf("unexpected info output %q", info.String())
	}
	if !strings.Contains(debug.String(), "only debug") || !strings.Contains(debug.String(), "both") {
		t.Fatalf("unexpected debug output %q", debug.String())
	}
}
