// Package housekeeping runs the periodic resync that protects the ordered
// chat index against updates missed during a dropped connection. The
// update dispatcher keeps the cache consistent with whatever updates it
// receives, but a gap in the update stream (reconnect, background
// throttling) can only be healed by asking the client to reload the
// dialog list outright; this package is what asks.
package housekeeping

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/basket/tgt/internal/otel"
	"github.com/basket/tgt/internal/tgclient"
)

var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// Config holds the dependencies for the resync scheduler.
type Config struct {
	Client    tgclient.Client
	Logger    *slog.Logger
	CronExpr  string // e.g. "*/5 * * * *"; falls back to every 5 minutes if unparsable
	ListKind  string // dialog list to resync, e.g. "main"
	PageLimit int32
	Metrics   *otel.Metrics
}

// Scheduler fires a LoadChats resync on the schedule named by CronExpr.
type Scheduler struct {
	client    tgclient.Client
	logger    *slog.Logger
	schedule  cronlib.Schedule
	listKind  string
	pageLimit int32
	metrics   *otel.Metrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler parses cfg.CronExpr and builds a Scheduler. A parse failure
// falls back to a fixed 5-minute schedule rather than failing startup over
// a bad config value.
func NewScheduler(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schedule, err := cronParser.Parse(cfg.CronExpr)
	if err != nil {
		logger.Warn("housekeeping: invalid resync_cron, falling back to every 5 minutes", "cron_expr", cfg.CronExpr, "error", err)
		schedule, _ = cronParser.Parse("*/5 * * * *")
	}
	listKind := cfg.ListKind
	if listKind == "" {
		listKind = "main"
	}
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 {
		pageLimit = 200
	}
	return &Scheduler{
		client:    cfg.Client,
		logger:    logger,
		schedule:  schedule,
		listKind:  listKind,
		pageLimit: pageLimit,
		metrics:   cfg.Metrics,
	}
}

// Start begins the scheduler loop in the background.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	now := time.Now()
	next := s.schedule.Next(now)

	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case now = <-timer.C:
			s.resync(ctx)
			next = s.schedule.Next(now)
		}
	}
}

func (s *Scheduler) resync(ctx context.Context) {
	if err := s.client.LoadChats(ctx, s.listKind, s.pageLimit); err != nil {
		s.logger.Error("housekeeping: resync failed", "list_kind", s.listKind, "error", err)
		return
	}
	s.logger.Debug("housekeeping: resync complete", "list_kind", s.listKind)
	if s.metrics != nil {
		s.metrics.ChatsResynced.Add(ctx, 1)
	}
}
