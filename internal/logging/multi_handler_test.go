package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandler_FansOut(t *testing.T) {
	var text, js bytes.Buffer
	h := NewMultiHandler(
		NewHandler(&text, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&js, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("dir", "settings_Default")

	logger.Info("only json")
	logger.Warn("both")

	if strings.Contains(text.String(), "only json") {
		t.Errorf("text handler should filter info: %q", text.String())
	}
	if !strings.Contains(text.String(), "both") {
		t.Errorf("text handler missing warn: %q", text.String())
	}
	if strings.Count(js.String(), "\n") != 2 {
		t.Errorf("json handler should receive both records: %q", js.String())
	}
	if !strings.Contains(js.String(), `"dir":"settings_Default"`) {
		t.Errorf("json handler missing attrs: %q", js.String())
	}
}
