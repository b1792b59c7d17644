package housekeeping

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/basket/tgt/internal/tgclient"
)

func TestNewSchedulerFallsBackOnBadCronExpr(t *testing.T) {
	s := NewScheduler(Config{Client: tgclient.NewMock(), CronExpr: "not a cron expr"})
	if s.schedule == nil {
		t.Fatal("expected a fallback schedule, got nil")
	}
}

func TestSchedulerResyncCallsLoadChats(t *testing.T) {
	mock := tgclient.NewMock()
	s := NewScheduler(Config{Client: mock, CronExpr: "*/5 * * * *", Logger: slog.Default()})
	s.resync(context.Background())

	found := false
	for _, call := range mock.Calls {
		if call == "load_chats" {
			found = true
		}
	}
	if !found {
		t.Fatalf("resync did not call LoadChats, calls=%v", mock.Calls)
	}
}

func TestSchedulerStartStopDoesNotHang(t *testing.T) {
	mock := tgclient.NewMock()
	s := NewScheduler(Config{Client: mock, CronExpr: "*/5 * * * *"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Start(ctx)
	s.Stop()
}
