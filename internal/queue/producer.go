package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type Producer interface {
	// Enqueue adds the task to the stream and returns the stream message id.
	Enqueue(ctx context.Context, task RefreshTask) (string, error)
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
}

func NewRedisProducer(client *redis.Client, stream string) Producer {
	return &redisProducer{
		client: client,
		stream: stream,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, task RefreshTask) (string, error) {
	attempt := task.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("encoding refresh task: %w", err)
	}

	fields := map[string]any{
		"task_type": string(TaskTypePlanRefresh),
		"plan_id":   task.SourcePlanID,
		"attempt":   attempt,
		"payload":   string(payload),
	}
	if task.ProjectID != 0 {
		fields["project_id"] = task.ProjectID
	}
	if task.TraceID != "" {
		fields["trace_id"] = task.TraceID
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue refresh task: %w", err)
	}

	slog.InfoContext(ctx, "enqueued plan refresh",
		"message_id", messageID,
		"source_plan_id", task.SourcePlanID,
		"attempt", attempt)
	return messageID, nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
