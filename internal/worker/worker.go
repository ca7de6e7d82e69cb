package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"basegraph.app/cadence/common/logger"
	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/service"
)

type Config struct {
	MaxAttempts  int
	ErrorBackoff time.Duration
}

type Worker struct {
	consumer  Consumer
	refresher Refresher
	metrics   metrics.Recorder
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, refresher Refresher, recorder metrics.Recorder, cfg Config) *Worker {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		refresher: refresher,
		metrics:   recorder,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "cadence.worker"})
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "worker started", "max_attempts", w.cfg.MaxAttempts)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-ctx.Done():
				case <-w.stopCh:
				case <-time.After(w.cfg.ErrorBackoff):
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		_ = w.HandleMessage(ctx, msg)
	}
	return nil
}

// HandleMessage processes msg and settles it: acked on success or permanent
// failure, requeued on a retryable failure, dead-lettered once MaxAttempts is
// reached. The processing error is returned for the caller's logs.
func (w *Worker) HandleMessage(ctx context.Context, msg queue.Message) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID: logger.Ptr(msg.ID),
		TaskType:  logger.Ptr(string(msg.TaskType)),
		PlanID:    logger.Ptr(msg.Task.SourcePlanID),
	})

	err := w.processMessageSafe(ctx, msg)
	switch {
	case err == nil:
		w.ack(ctx, msg)
		w.metrics.ObserveRefreshTask(metrics.OutcomeSucceeded)
	case isPermanent(err):
		slog.WarnContext(ctx, "dropping refresh task that cannot succeed",
			"error", err,
			"attempt", msg.Attempt)
		w.ack(ctx, msg)
		w.metrics.ObserveRefreshTask(metrics.OutcomeDropped)
	default:
		slog.ErrorContext(ctx, "message processing failed",
			"error", err,
			"attempt", msg.Attempt)
		w.handleFailedMessage(ctx, msg, err)
	}
	return err
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage runs the refresh a message asks for without settling it.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	span := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.plan_refresh")
	defer span.End()
	ctx = span.Context()

	slog.InfoContext(ctx, "processing refresh task", "attempt", msg.Attempt)

	task := msg.Task
	start := time.Now()
	detail, err := w.refresher.Refresh(ctx, service.RefreshPlanParams{
		SourcePlanID: task.SourcePlanID,
		ProposalName: task.ProposalName,
		HorizonWeeks: task.HorizonWeeks,
		StartDate:    task.StartDate,
		Cadence:      task.Cadence,
		Channels:     task.Channels,
		Clusters:     task.Clusters,
		TraceID:      msg.TraceID,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("refreshing plan: %w", err)
	}

	slog.InfoContext(ctx, "refresh task completed",
		"proposal_id", detail.Plan.ID,
		"items", len(detail.Items),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ", "attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		w.metrics.ObserveRefreshTask(metrics.OutcomeDeadLetter)
		return
	}

	slog.WarnContext(ctx, "requeuing failed message", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
	w.metrics.ObserveRefreshTask(metrics.OutcomeRequeued)
}

func (w *Worker) ack(ctx context.Context, msg queue.Message) {
	if err := w.consumer.Ack(ctx, msg); err != nil {
		// The reclaimer will pick the message up again.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}
}

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, service.ErrPlanNotFound) ||
		errors.Is(err, service.ErrProjectNotFound) ||
		errors.Is(err, service.ErrProjectNotReady)
}
