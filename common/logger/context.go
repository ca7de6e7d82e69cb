package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log record emitted with a context carrying them.
type LogFields struct {
	WorkspaceID *int64
	ProjectID   *int64
	PlanID      *int64
	MessageID   *string // Redis stream message ID
	TaskType    *string // e.g. "plan_refresh"
	Component   string  // e.g. "cadence.worker.refresh"
}

// WithLogFields merges fields into the context. Newer non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.WorkspaceID != nil {
		result.WorkspaceID = new.WorkspaceID
	}
	if new.ProjectID != nil {
		result.ProjectID = new.ProjectID
	}
	if new.PlanID != nil {
		result.PlanID = new.PlanID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.TaskType != nil {
		result.TaskType = new.TaskType
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr returns a pointer to v, for inline LogFields literals.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes and marks the cut with "...".
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
