package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvview/internal/source"
	"csvview/internal/state"
)

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute("version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestServeRejectsNonCSVAddress(t *testing.T) {
	_, err := execute("serve", "http://example.test/data.csv.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrNotActivated))
}

func TestViewRejectsNonCSVAddress(t *testing.T) {
	_, err := execute("view", "notes.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrNotActivated))
}

func TestServeRejectsBadPort(t *testing.T) {
	_, err := execute("serve", "--web-port", "http", "data.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web-port")
}

func TestServeRequiresAddress(t *testing.T) {
	_, err := execute("serve")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}

func TestFormatLogMessage(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := formatLogMessage(ts, "ERROR", "Failed to load CSV", []slog.Attr{
		slog.String("component", "Main"),
		slog.String("address", "x.csv"),
		slog.Any("error", errors.New("boom")),
		slog.Int("rows", 3),
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(msg), &got))
	assert.Equal(t, "2024-05-01T12:00:00Z", got["time"])
	assert.Equal(t, "ERROR", got["level"])
	assert.Equal(t, "Failed to load CSV", got["msg"])
	assert.Equal(t, "x.csv", got["address"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, float64(3), got["rows"])
	assert.NotContains(t, got, "component")
}

func TestRingHandlerMirrorsRecords(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	app := state.New(10, "x.csv", "test")
	var out bytes.Buffer
	setupLogging(&out, "INFO", app)

	slog.Debug("hidden", "component", "Web")
	slog.With("component", "Source").Info("CSV loaded", "rows", 2)
	logError("Failed to load CSV")

	logs := app.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "INFO", logs[0].Level)
	assert.Equal(t, "Source", logs[0].Label)
	assert.Contains(t, logs[0].Message, `"rows":2`)
	assert.Equal(t, "ERROR", logs[1].Level)
	assert.Equal(t, "Main", logs[1].Label)

	assert.Contains(t, out.String(), `"component":"Source"`)
	assert.NotContains(t, out.String(), "hidden")
}
