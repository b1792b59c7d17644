// Package audit keeps an append-only JSONL trail of the mutating
// operations this client issues against Telegram (send, edit, delete,
// logout) — the terminal equivalent of a sent-items log, useful for
// reconstructing what this client did to an account after the fact.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/basket/tgt/internal/shared"
)

type entry struct {
	Timestamp string `json:"timestamp"`
	Operation string `json:"operation"`
	ChatID    int64  `json:"chat_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

var (
	mu   sync.Mutex
	file *os.File
)

// Init opens audit.jsonl under homeDir/logs, creating the directory if
// needed. Calling it more than once is a no-op.
func Init(homeDir string) error {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		return nil
	}
	logDir := filepath.Join(homeDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(logDir, "audit.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	file = f
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Record appends one audit entry. detail is redacted before persistence
// the same way log lines are: a pasted API hash or password in a
// sent message's own text is not this log's business, but detail itself
// (built from our own strings, e.g. error messages) still gets the pass.
func Record(operation string, chatID int64, detail string) {
	detail = shared.Redact(detail)

	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}
	ev := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Operation: operation,
		ChatID:    chatID,
		Detail:    detail,
	}
	b, err := json.Marshal(ev)
	if err == nil {
		_, _ = file.Write(append(b, '\n'))
	}
}
