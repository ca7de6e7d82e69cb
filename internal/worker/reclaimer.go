package worker

import (
	"context"
	"log/slog"
	"time"

	"basegraph.app/cadence/common/logger"
)

type ReclaimerConfig struct {
	MinIdle   time.Duration // how long an entry must sit unacknowledged
	Interval  time.Duration
	BatchSize int64
}

// Reclaimer hands refresh tasks stranded by a dead worker back to the
// message handler. Each tick claims one page of the pending list and resumes
// from the returned cursor on the next tick.
type Reclaimer struct {
	claimer StaleClaimer
	cfg     ReclaimerConfig
	handle  MessageProcessor
	cursor  string

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewReclaimer(claimer StaleClaimer, cfg ReclaimerConfig, handle MessageProcessor) *Reclaimer {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MinIdle <= 0 {
		cfg.MinIdle = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	return &Reclaimer{
		claimer:   claimer,
		cfg:       cfg,
		handle:    handle,
		cursor:    "0-0",
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run claims on every tick until Stop is called or ctx ends.
func (r *Reclaimer) Run(ctx context.Context) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "cadence.worker.reclaimer"})
	defer close(r.stoppedCh)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "reclaimer started", "interval", r.cfg.Interval, "min_idle", r.cfg.MinIdle)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			if _, err := r.ReclaimOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "reclaim failed", "error", err)
			}
		}
	}
}

func (r *Reclaimer) Stop() {
	close(r.stopCh)
	<-r.stoppedCh
}

// ReclaimOnce claims one page of stale entries and runs each through the
// handler, which settles it like any freshly read message. It returns the
// number of messages handled.
func (r *Reclaimer) ReclaimOnce(ctx context.Context) (int, error) {
	messages, next, err := r.claimer.ClaimStale(ctx, r.cursor, r.cfg.MinIdle, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	r.cursor = next

	for _, msg := range messages {
		msgCtx := logger.WithLogFields(ctx, logger.LogFields{
			MessageID: logger.Ptr(msg.ID),
			PlanID:    logger.Ptr(msg.Task.SourcePlanID),
		})
		slog.InfoContext(msgCtx, "handling reclaimed refresh task", "attempt", msg.Attempt)
		if err := r.handle(msgCtx, msg); err != nil {
			slog.WarnContext(msgCtx, "reclaimed refresh task failed", "error", err)
		}
	}
	return len(messages), nil
}
