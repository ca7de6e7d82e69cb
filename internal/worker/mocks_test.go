package worker_test

import (
	"context"
	"sync"
	"time"

	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/service"
)

type mockConsumer struct {
	mu        sync.Mutex
	readFn    func(ctx context.Context) ([]queue.Message, error)
	ackErr    error
	acked     []string
	requeued  []string
	dlq       []string
	lastError string
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if m.readFn != nil {
		return m.readFn(ctx)
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (m *mockConsumer) Ack(_ context.Context, msg queue.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, msg.ID)
	return m.ackErr
}

func (m *mockConsumer) Requeue(_ context.Context, msg queue.Message, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requeued = append(m.requeued, msg.ID)
	m.lastError = errMsg
	return nil
}

func (m *mockConsumer) SendDLQ(_ context.Context, msg queue.Message, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dlq = append(m.dlq, msg.ID)
	m.lastError = errMsg
	return nil
}

func (m *mockConsumer) ackedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

type mockRefresher struct {
	mu        sync.Mutex
	refreshFn func(ctx context.Context, params service.RefreshPlanParams) (*model.PlanDetail, error)
	calls     []service.RefreshPlanParams
}

func (m *mockRefresher) Refresh(ctx context.Context, params service.RefreshPlanParams) (*model.PlanDetail, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	m.mu.Unlock()
	if m.refreshFn != nil {
		return m.refreshFn(ctx, params)
	}
	return &model.PlanDetail{Plan: model.Plan{ID: 900}}, nil
}

type mockRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *mockRecorder) ObservePlan(model.Diagnostics, []model.PlanItemDraft, time.Duration) {}

func (m *mockRecorder) ObserveRefreshTask(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

type claimCall struct {
	cursor  string
	minIdle time.Duration
	count   int64
}

type mockClaimer struct {
	claimFn func(ctx context.Context, cursor string) ([]queue.Message, string, error)
	calls   []claimCall
}

func (m *mockClaimer) ClaimStale(ctx context.Context, cursor string, minIdle time.Duration, count int64) ([]queue.Message, string, error) {
	m.calls = append(m.calls, claimCall{cursor: cursor, minIdle: minIdle, count: count})
	if m.claimFn != nil {
		return m.claimFn(ctx, cursor)
	}
	return nil, "0-0", nil
}

func refreshMessage(id string, planID int64, attempt int) queue.Message {
	return queue.Message{
		ID:       id,
		TaskType: queue.TaskTypePlanRefresh,
		Attempt:  attempt,
		Task:     queue.RefreshTask{SourcePlanID: planID, Attempt: attempt},
	}
}
