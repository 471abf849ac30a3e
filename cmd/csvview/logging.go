package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"csvview/internal/state"
)

// setupLogging installs a JSON slog handler on out at the given level. Every
// enabled record is also appended to the app's log ring for /api/logs.
func setupLogging(out io.Writer, level string, app *state.AppState) {
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	})
	slog.SetDefault(slog.New(&ringHandler{Handler: handler, app: app}))
}

// ringHandler mirrors records into AppState before passing them on.
type ringHandler struct {
	slog.Handler
	app   *state.AppState
	attrs []slog.Attr
}

func (h *ringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.app != nil {
		attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
		attrs = append(attrs, h.attrs...)
		r.Attrs(func(a slog.Attr) bool {
			attrs = append(attrs, a)
			return true
		})
		component := "Main"
		for _, a := range attrs {
			if a.Key == "component" {
				component = a.Value.String()
			}
		}
		h.app.AddLog(r.Level.String(), component, formatLogMessage(r.Time, r.Level.String(), r.Message, attrs))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ringHandler{Handler: h.Handler.WithAttrs(attrs), app: h.app, attrs: merged}
}

func (h *ringHandler) WithGroup(name string) slog.Handler {
	return &ringHandler{Handler: h.Handler.WithGroup(name), app: h.app, attrs: h.attrs}
}

func logDebug(msg string, attrs ...any) {
	slog.Debug(msg, append([]any{"component", "Main"}, attrs...)...)
}

func logInfo(msg string, attrs ...any) {
	slog.Info(msg, append([]any{"component", "Main"}, attrs...)...)
}

func logError(msg string, attrs ...any) {
	slog.Error(msg, append([]any{"component", "Main"}, attrs...)...)
}

// formatLogMessage formats a record as a single JSON line for display
func formatLogMessage(t time.Time, level, msg string, attrs []slog.Attr) string {
	// Build a struct to ensure consistent field order
	type logEntry struct {
		Time  string `json:"time"`
		Level string `json:"level"`
		Msg   string `json:"msg"`
	}

	if t.IsZero() {
		t = time.Now()
	}
	baseJSON, _ := json.Marshal(logEntry{
		Time:  t.UTC().Format(time.RFC3339Nano),
		Level: level,
		Msg:   msg,
	})
	parts := []string{strings.TrimSuffix(string(baseJSON), "}")}

	for _, a := range attrs {
		if a.Key == "component" {
			continue
		}
		v := a.Value.Resolve().Any()
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		valJSON, err := json.Marshal(v)
		if err != nil {
			valJSON, _ = json.Marshal(fmt.Sprint(v))
		}
		keyJSON, _ := json.Marshal(a.Key)
		parts = append(parts, fmt.Sprintf(`%s:%s`, keyJSON, valJSON))
	}

	return strings.Join(parts, ",") + "}"
}

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
