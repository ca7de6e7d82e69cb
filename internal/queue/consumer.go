package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/cadence/common/logger"
)

type ConsumerConfig struct {
	Stream       string        // Redis stream name
	Group        string        // Redis consumer group name
	Consumer     string        // Redis consumer name
	DLQStream    string        // Dead letter stream for tasks that exhausted their attempts
	BatchSize    int64         // Messages per read
	Block        time.Duration // How long a read blocks waiting for messages
	MaxAttempts  int           // Attempts before a task goes to the DLQ
	RequeueDelay time.Duration // Pause before a failed task is re-added
}

type Message struct {
	ID        string
	TaskType  TaskType
	Attempt   int
	TraceID   string
	LastError string
	Task      RefreshTask
	Raw       redis.XMessage
}

type RedisConsumer struct {
	client *redis.Client
	cfg    ConsumerConfig
}

func NewRedisConsumer(ctx context.Context, client *redis.Client, cfg ConsumerConfig) (*RedisConsumer, error) {
	consumer := &RedisConsumer{
		client: client,
		cfg:    cfg,
	}

	if err := consumer.ensureGroup(ctx); err != nil {
		return nil, err
	}

	return consumer, nil
}

func (c *RedisConsumer) Config() ConsumerConfig {
	return c.cfg
}

func (c *RedisConsumer) ensureGroup(ctx context.Context) error {
	// Start from "0" so tasks added before the group existed are not skipped.
	err := c.client.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	return nil
}

// Read returns newly delivered tasks. Unparseable entries are acknowledged
// and skipped; pending entries are left to the reclaimer.
func (c *RedisConsumer) Read(ctx context.Context) ([]Message, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "cadence.queue.consumer",
	})

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, ">"},
		Count:    c.cfg.BatchSize,
		Block:    c.cfg.Block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		return nil, fmt.Errorf("reading from stream: %w", err)
	}

	messages := []Message{}
	for _, stream := range streams {
		messages = append(messages, c.accept(ctx, stream.Messages)...)
	}

	if len(messages) > 0 {
		slog.DebugContext(ctx, "read messages from stream",
			"count", len(messages),
			"stream", c.cfg.Stream,
			"consumer", c.cfg.Consumer)
	}

	return messages, nil
}

// ClaimStale takes over up to count entries that another consumer has held
// for at least minIdle, scanning the pending list from cursor ("0-0" starts
// over). It returns the parsed messages and the cursor for the next call.
// Entries that fail to parse are acknowledged and dropped, as in Read.
func (c *RedisConsumer) ClaimStale(ctx context.Context, cursor string, minIdle time.Duration, count int64) ([]Message, string, error) {
	if cursor == "" {
		cursor = "0-0"
	}
	raws, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.cfg.Stream,
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		MinIdle:  minIdle,
		Start:    cursor,
		Count:    count,
	}).Result()
	if err != nil {
		return nil, cursor, fmt.Errorf("xautoclaim (stream=%s): %w", c.cfg.Stream, err)
	}
	return c.accept(ctx, raws), next, nil
}

// accept parses a batch and acknowledges the entries that cannot be parsed so
// they are not delivered again.
func (c *RedisConsumer) accept(ctx context.Context, raws []redis.XMessage) []Message {
	messages, invalid := ParseMessages(raws)
	for _, bad := range invalid {
		slog.ErrorContext(ctx, "failed to parse message",
			"error", bad.Err,
			"raw_message_id", bad.Raw.ID,
			"stream", c.cfg.Stream)
		_ = c.Ack(ctx, Message{ID: bad.Raw.ID, Raw: bad.Raw})
	}
	return messages
}

func (c *RedisConsumer) Ack(ctx context.Context, msg Message) error {
	if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
		return fmt.Errorf("xack (stream=%s): %w", c.cfg.Stream, err)
	}
	return nil
}

// Requeue acknowledges msg and re-adds it with the next attempt number.
func (c *RedisConsumer) Requeue(ctx context.Context, msg Message, errMsg string) error {
	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking failed message for requeue: %w", err)
	}

	attempt := msg.Attempt + 1
	values := messageValues(msg, attempt)
	if errMsg != "" {
		values["last_error"] = errMsg
	}

	if c.cfg.RequeueDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.RequeueDelay):
		}
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.Stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd requeue: %w", err)
	}

	slog.InfoContext(ctx, "message requeued for retry",
		"next_attempt", attempt,
		"reason", errMsg)
	return nil
}

func (c *RedisConsumer) SendDLQ(ctx context.Context, msg Message, errMsg string) error {
	if err := c.Ack(ctx, msg); err != nil {
		return fmt.Errorf("acking failed message for dlq: %w", err)
	}

	values := messageValues(msg, msg.Attempt)
	values["error"] = errMsg

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.cfg.DLQStream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd dlq (stream=%s): %w", c.cfg.DLQStream, err)
	}

	slog.ErrorContext(ctx, "message sent to DLQ",
		"final_error", errMsg,
		"dlq_stream", c.cfg.DLQStream)
	return nil
}

// InvalidMessage is a stream entry ParseMessages rejected.
type InvalidMessage struct {
	Raw redis.XMessage
	Err error
}

// ParseMessages parses a batch in order, splitting it into valid messages and
// rejected entries.
func ParseMessages(raws []redis.XMessage) ([]Message, []InvalidMessage) {
	messages := make([]Message, 0, len(raws))
	var invalid []InvalidMessage
	for _, raw := range raws {
		msg, err := ParseMessage(raw)
		if err != nil {
			invalid = append(invalid, InvalidMessage{Raw: raw, Err: err})
			continue
		}
		messages = append(messages, msg)
	}
	return messages, invalid
}

func ParseMessage(raw redis.XMessage) (Message, error) {
	taskType := TaskType(stringValue(raw.Values, "task_type"))
	if taskType == "" {
		return Message{}, fmt.Errorf("missing task_type")
	}
	if taskType != TaskTypePlanRefresh {
		return Message{}, fmt.Errorf("unknown task_type %q", taskType)
	}

	planID, err := parseInt64(raw.Values, "plan_id")
	if err != nil {
		return Message{}, err
	}

	attempt := 1
	if _, ok := raw.Values["attempt"]; ok {
		if attempt, err = parseInt(raw.Values, "attempt"); err != nil {
			return Message{}, err
		}
		if attempt <= 0 {
			attempt = 1
		}
	}

	var task RefreshTask
	if payload := stringValue(raw.Values, "payload"); payload != "" {
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			return Message{}, fmt.Errorf("parsing payload: %w", err)
		}
	}
	if task.SourcePlanID != 0 && task.SourcePlanID != planID {
		return Message{}, fmt.Errorf("payload plan %d does not match plan_id %d", task.SourcePlanID, planID)
	}
	task.SourcePlanID = planID
	task.Attempt = attempt
	task.TraceID = stringValue(raw.Values, "trace_id")

	return Message{
		ID:        raw.ID,
		TaskType:  taskType,
		Attempt:   attempt,
		TraceID:   task.TraceID,
		LastError: stringValue(raw.Values, "last_error"),
		Task:      task,
		Raw:       raw,
	}, nil
}

func parseInt64(values map[string]any, key string) (int64, error) {
	raw, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	num, err := strconv.ParseInt(fmt.Sprint(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func parseInt(values map[string]any, key string) (int, error) {
	raw, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	num, err := strconv.Atoi(fmt.Sprint(raw))
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return num, nil
}

func stringValue(values map[string]any, key string) string {
	raw, ok := values[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(raw)
}

// messageValues rebuilds stream fields for a requeue or DLQ copy of msg.
func messageValues(msg Message, attempt int) map[string]any {
	values := map[string]any{
		"task_type": string(TaskTypePlanRefresh),
		"plan_id":   msg.Task.SourcePlanID,
		"attempt":   attempt,
	}
	if payload, ok := msg.Raw.Values["payload"]; ok {
		values["payload"] = payload
	}
	if projectID, ok := msg.Raw.Values["project_id"]; ok {
		values["project_id"] = projectID
	}
	if msg.TraceID != "" {
		values["trace_id"] = msg.TraceID
	}
	return values
}
