package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/model"
)

var _ = Describe("Prometheus", func() {
	var (
		reg *prometheus.Registry
		rec *metrics.Prometheus
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()
		var err error
		rec, err = metrics.NewPrometheus(reg, "test")
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a second registration on the same registry", func() {
		_, err := metrics.NewPrometheus(reg, "test")
		Expect(err).To(HaveOccurred())
	})

	It("records a refresh run from its diagnostics", func() {
		diag := model.Diagnostics{
			Mode:              model.PlanModeRefresh,
			TotalSlots:        6,
			TotalItems:        5,
			DroppedSlots:      1,
			CollisionsAvoided: 2,
			ClusterStats: []model.ClusterStat{
				{ID: "a", CoverageState: model.CoverageHealthy, Assigned: 4},
				{ID: "b", CoverageState: model.CoverageMissing, Assigned: 0},
				{ID: "c", CoverageState: model.CoverageThin, Assigned: 1},
			},
		}
		items := []model.PlanItemDraft{
			{Channel: model.ChannelBlog},
			{Channel: model.ChannelBlog},
			{Channel: model.ChannelNewsletter},
		}

		rec.ObservePlan(diag, items, 15*time.Millisecond)

		count, err := testutil.GatherAndCount(reg, "test_planning_runs_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))

		families, err := reg.Gather()
		Expect(err).NotTo(HaveOccurred())
		values := map[string]float64{}
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				if m.GetCounter() != nil {
					values[mf.GetName()] += m.GetCounter().GetValue()
				}
			}
		}
		Expect(values).To(HaveKeyWithValue("test_planning_slots_total", 6.0))
		Expect(values).To(HaveKeyWithValue("test_planning_items_total", 3.0))
		Expect(values).To(HaveKeyWithValue("test_planning_dropped_slots_total", 1.0))
		Expect(values).To(HaveKeyWithValue("test_planning_collisions_avoided_total", 2.0))
		Expect(values).To(HaveKeyWithValue("test_planning_underserved_clusters_total", 1.0))
	})

	It("counts refresh task outcomes", func() {
		rec.ObserveRefreshTask(metrics.OutcomeSucceeded)
		rec.ObserveRefreshTask(metrics.OutcomeSucceeded)
		rec.ObserveRefreshTask(metrics.OutcomeDeadLetter)

		count, err := testutil.GatherAndCount(reg, "test_worker_refresh_tasks_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))
	})
})
