package worker

import (
	"context"
	"time"

	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/service"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Refresher builds and stores a refresh proposal. service.PlanService
// satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, params service.RefreshPlanParams) (*model.PlanDetail, error)
}

// StaleClaimer takes over entries left unacknowledged by other consumers.
// queue.RedisConsumer satisfies it.
type StaleClaimer interface {
	ClaimStale(ctx context.Context, cursor string, minIdle time.Duration, count int64) ([]queue.Message, string, error)
}

// MessageProcessor handles one parsed queue message.
type MessageProcessor func(ctx context.Context, msg queue.Message) error
