// Package logging sets up the structured, rotating file logger used
// across the process (ambient stack,). Every component logs through a
// *slog.Logger obtained here rather than the default slog logger, so log
// level and destination follow the user's LoggerConfig.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/basket/tgt/internal/config"
	"github.com/basket/tgt/internal/shared"
)

// New builds the process logger. The returned io.Closer must be closed on
// shutdown so main can flush and release the rotating log file.
func New(homeDir string, cfg config.LoggerConfig) (*slog.Logger, io.Closer, error) {
	logPath := cfg.File
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(homeDir, "logs", logPath)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, err
	}

	rotating := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	handler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}
			if shouldRedactKey(a.Key) {
				return slog.String(a.Key, "[REDACTED]")
			}
			if a.Value.Kind() == slog.KindString {
				if redacted := shared.Redact(a.Value.String()); redacted != a.Value.String() {
					return slog.String(a.Key, redacted)
				}
			}
			return a
		},
	})
	logger := slog.New(handler).With("component", "tgt", "run_id", shared.NewTraceID())
	return logger, rotating, nil
}

func shouldRedactKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, token := range []string{"api_hash", "api_id", "phone", "password", "auth_code", "token"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
