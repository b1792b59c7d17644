package logging

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestShouldRedactKey(t *testing.T) {
	for _, key := range []string{"api_hash", "phone", "Password", "auth_code"} {
		if !shouldRedactKey(key) {
			t.Errorf("shouldRedactKey(%q) = false, want true", key)
		}
	}
	if shouldRedactKey("chat_id") {
		t.Error("shouldRedactKey(chat_id) = true, want false")
	}
}

func TestReplaceAttrRedactsSensitiveValues(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if shouldRedactKey(a.Key) {
				return slog.String(a.Key, "[REDACTED]")
			}
			return a
		},
	})
	logger := slog.New(h)
	logger.Info("login", "api_hash", "deadbeef1234")

	if bytes.Contains(buf.Bytes(), []byte("deadbeef1234")) {
		t.Fatalf("log output leaked api_hash: %s", buf.String())
	}
}
