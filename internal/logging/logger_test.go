package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equalf(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestSetup_JSON(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	var buf bytes.Buffer
	l := Setup("info", "json", &buf)
	l.Info("run finished", "rows", 3)
	l.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
	assert.Same(t, l, slog.Default())
}

func TestSetup_TextDefault(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	var buf bytes.Buffer
	l := Setup("", "", &buf)
	l.Info("quiet")
	l.Warn("loud", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "msg=loud")
	assert.Contains(t, out, "k=v")
}

func TestKnownLevel(t *testing.T) {
	for _, l := range []string{"debug", "Info", "warn", "warning", "ERROR"} {
		assert.Truef(t, KnownLevel(l), "KnownLevel(%q)", l)
	}
	for _, l := range []string{"", "trace", "verbose"} {
		assert.Falsef(t, KnownLevel(l), "KnownLevel(%q)", l)
	}
}
