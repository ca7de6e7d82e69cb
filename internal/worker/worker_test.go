package worker_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/service"
	"basegraph.app/cadence/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx       context.Context
		consumer  *mockConsumer
		refresher *mockRefresher
		recorder  *mockRecorder
		w         *worker.Worker
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		refresher = &mockRefresher{}
		recorder = &mockRecorder{}
		w = worker.New(consumer, refresher, recorder, worker.Config{MaxAttempts: 3, ErrorBackoff: time.Millisecond})
	})

	Describe("HandleMessage", func() {
		It("refreshes with the task's parameters and acks", func() {
			cadence := model.Cadence{Frequency: model.FrequencyBiweekly, DaysOfWeek: []int{2}}
			msg := refreshMessage("1-0", 42, 1)
			msg.TraceID = "trace"
			msg.Task.ProposalName = "Next"
			msg.Task.HorizonWeeks = 6
			msg.Task.StartDate = "2024-03-04"
			msg.Task.Cadence = &cadence
			msg.Task.Channels = []string{"blog"}
			msg.Task.Clusters = []model.KeywordCluster{{ID: "a"}}

			Expect(w.HandleMessage(ctx, msg)).To(Succeed())

			Expect(refresher.calls).To(Equal([]service.RefreshPlanParams{{
				SourcePlanID: 42,
				ProposalName: "Next",
				HorizonWeeks: 6,
				StartDate:    "2024-03-04",
				Cadence:      &cadence,
				Channels:     []string{"blog"},
				Clusters:     []model.KeywordCluster{{ID: "a"}},
				TraceID:      "trace",
			}}))
			Expect(consumer.acked).To(Equal([]string{"1-0"}))
			Expect(recorder.outcomes).To(Equal([]string{metrics.OutcomeSucceeded}))
		})

		It("requeues retryable failures below the attempt limit", func() {
			refresher.refreshFn = func(context.Context, service.RefreshPlanParams) (*model.PlanDetail, error) {
				return nil, errors.New("db unavailable")
			}

			err := w.HandleMessage(ctx, refreshMessage("1-0", 42, 2))

			Expect(err).To(HaveOccurred())
			Expect(consumer.requeued).To(Equal([]string{"1-0"}))
			Expect(consumer.lastError).To(ContainSubstring("db unavailable"))
			Expect(consumer.acked).To(BeEmpty())
			Expect(recorder.outcomes).To(Equal([]string{metrics.OutcomeRequeued}))
		})

		It("dead-letters a task on its last attempt", func() {
			refresher.refreshFn = func(context.Context, service.RefreshPlanParams) (*model.PlanDetail, error) {
				return nil, errors.New("db unavailable")
			}

			_ = w.HandleMessage(ctx, refreshMessage("1-0", 42, 3))

			Expect(consumer.dlq).To(Equal([]string{"1-0"}))
			Expect(consumer.requeued).To(BeEmpty())
			Expect(recorder.outcomes).To(Equal([]string{metrics.OutcomeDeadLetter}))
		})

		DescribeTable("drops tasks that cannot succeed",
			func(cause error) {
				refresher.refreshFn = func(context.Context, service.RefreshPlanParams) (*model.PlanDetail, error) {
					return nil, cause
				}

				err := w.HandleMessage(ctx, refreshMessage("1-0", 42, 1))

				Expect(errors.Is(err, cause)).To(BeTrue())
				Expect(consumer.acked).To(Equal([]string{"1-0"}))
				Expect(consumer.requeued).To(BeEmpty())
				Expect(consumer.dlq).To(BeEmpty())
				Expect(recorder.outcomes).To(Equal([]string{metrics.OutcomeDropped}))
			},
			Entry("missing plan", service.ErrPlanNotFound),
			Entry("missing project", fmt.Errorf("wrapped: %w", service.ErrProjectNotFound)),
			Entry("project without keywords", service.ErrProjectNotReady),
		)

		It("recovers from panics and requeues", func() {
			refresher.refreshFn = func(context.Context, service.RefreshPlanParams) (*model.PlanDetail, error) {
				panic("boom")
			}

			err := w.HandleMessage(ctx, refreshMessage("1-0", 42, 1))

			Expect(err).To(MatchError(ContainSubstring("panic: boom")))
			Expect(consumer.requeued).To(Equal([]string{"1-0"}))
		})

		It("still counts a success when the ack fails", func() {
			consumer.ackErr = errors.New("redis gone")
			Expect(w.HandleMessage(ctx, refreshMessage("1-0", 42, 1))).To(Succeed())
			Expect(recorder.outcomes).To(Equal([]string{metrics.OutcomeSucceeded}))
		})
	})

	Describe("Run", func() {
		It("processes batches until stopped", func() {
			delivered := false
			consumer.readFn = func(ctx context.Context) ([]queue.Message, error) {
				if !delivered {
					delivered = true
					return []queue.Message{refreshMessage("1-0", 1, 1), refreshMessage("2-0", 2, 1)}, nil
				}
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Millisecond):
					return nil, nil
				}
			}

			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			Eventually(consumer.ackedIDs).Should(Equal([]string{"1-0", "2-0"}))
			w.Stop()
			Eventually(done).Should(Receive(BeNil()))
		})

		It("returns when the context is canceled", func() {
			consumer.readFn = func(context.Context) ([]queue.Message, error) {
				return nil, errors.New("connection refused")
			}
			runCtx, cancel := context.WithCancel(ctx)

			done := make(chan error, 1)
			go func() { done <- w.Run(runCtx) }()
			cancel()

			Eventually(done).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
