package planning_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
)

func cluster(id string, weight float64, coverage model.CoverageState) model.KeywordCluster {
	return model.KeywordCluster{
		ID:             id,
		Label:          id,
		PrimaryKeyword: id + " keyword",
		Weight:         weight,
		CoverageState:  coverage,
	}
}

func sum(quotas map[string]int) int {
	total := 0
	for _, q := range quotas {
		total += q
	}
	return total
}

var _ = Describe("AllocateQuotas", func() {
	It("gives the leftover slot to the largest remainder", func() {
		quotas := planning.AllocateQuotas([]model.KeywordCluster{
			cluster("a", 2.0, model.CoverageHealthy),
			cluster("b", 1.0, model.CoverageMissing),
		}, 4)

		Expect(quotas).To(Equal(map[string]int{"a": 3, "b": 1}))
	})

	It("breaks equal remainders by label", func() {
		quotas := planning.AllocateQuotas([]model.KeywordCluster{
			cluster("gamma", 1, model.CoverageHealthy),
			cluster("beta", 1, model.CoverageHealthy),
			cluster("alpha", 1, model.CoverageHealthy),
		}, 10)

		Expect(quotas).To(Equal(map[string]int{"alpha": 4, "beta": 3, "gamma": 3}))
	})

	It("conserves the total slot count", func() {
		clusters := []model.KeywordCluster{
			cluster("a", 2.7, model.CoverageHealthy),
			cluster("b", 0.4, model.CoverageThin),
			cluster("c", 1.3, model.CoverageDrifting),
			cluster("d", 0.9, model.CoverageHealthy),
		}
		for _, total := range []int{1, 3, 7, 13, 40} {
			Expect(sum(planning.AllocateQuotas(clusters, total))).To(Equal(total))
		}
	})

	It("moves a slot from the richest donor to a missing cluster", func() {
		quotas := planning.AllocateQuotas([]model.KeywordCluster{
			cluster("a", 3.0, model.CoverageHealthy),
			cluster("b", 3.0, model.CoverageHealthy),
			cluster("c", 0.2, model.CoverageMissing),
		}, 4)

		Expect(quotas).To(Equal(map[string]int{"a": 1, "b": 2, "c": 1}))
	})

	It("leaves a needy cluster at zero when nobody can donate", func() {
		quotas := planning.AllocateQuotas([]model.KeywordCluster{
			cluster("a", 3.0, model.CoverageHealthy),
			cluster("b", 0.2, model.CoverageMissing),
		}, 1)

		Expect(quotas).To(Equal(map[string]int{"a": 1, "b": 0}))
	})

	It("serves needy clusters first come first served", func() {
		quotas := planning.AllocateQuotas([]model.KeywordCluster{
			cluster("a", 3.0, model.CoverageHealthy),
			cluster("n1", 0.2, model.CoverageThin),
			cluster("n2", 0.2, model.CoverageMissing),
		}, 2)

		Expect(quotas).To(Equal(map[string]int{"a": 1, "n1": 1, "n2": 0}))
	})

	It("clamps weights into the supported range", func() {
		quotas := planning.AllocateQuotas([]model.KeywordCluster{
			cluster("a", 50, model.CoverageHealthy),
			cluster("b", 0, model.CoverageHealthy),
		}, 16)

		// 3.0 vs 0.2 after clamping
		Expect(quotas).To(Equal(map[string]int{"a": 15, "b": 1}))
	})

	It("returns zero quotas for degenerate inputs", func() {
		Expect(planning.AllocateQuotas(nil, 5)).To(BeEmpty())
		Expect(planning.AllocateQuotas([]model.KeywordCluster{cluster("a", 1, model.CoverageHealthy)}, 0)).
			To(Equal(map[string]int{"a": 0}))
	})
})
