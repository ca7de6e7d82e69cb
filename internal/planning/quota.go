package planning

import (
	"math"
	"sort"

	"basegraph.app/cadence/internal/model"
)

// AllocateQuotas computes how many slots each cluster may receive in a refresh
// run. Weights are clamped to the refresh range before apportioning.
func AllocateQuotas(clusters []model.KeywordCluster, totalSlots int) map[string]int {
	ordered, _ := prepareClusters(clusters, model.PlanModeRefresh)
	targets := allocateQuotas(ordered, totalSlots)

	quotas := make(map[string]int, len(ordered))
	for i, c := range ordered {
		quotas[c.ID] = targets[i]
	}
	return quotas
}

// allocateQuotas expects clusters in planning order and returns one target per
// cluster. Targets always sum to totalSlots when any weight is positive.
func allocateQuotas(clusters []model.KeywordCluster, totalSlots int) []int {
	targets := make([]int, len(clusters))
	if totalSlots <= 0 || len(clusters) == 0 {
		return targets
	}

	var weightSum float64
	for _, c := range clusters {
		weightSum += c.Weight
	}
	if weightSum <= 0 {
		return targets
	}

	remainders := make([]float64, len(clusters))
	assigned := 0
	for i, c := range clusters {
		raw := c.Weight / weightSum * float64(totalSlots)
		floor := math.Floor(raw)
		targets[i] = int(floor)
		remainders[i] = raw - floor
		assigned += targets[i]
	}

	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if remainders[ia] != remainders[ib] {
			return remainders[ia] > remainders[ib]
		}
		if clusters[ia].Label != clusters[ib].Label {
			return clusters[ia].Label < clusters[ib].Label
		}
		return clusters[ia].ID < clusters[ib].ID
	})
	for k := 0; assigned < totalSlots; k++ {
		targets[order[k%len(order)]]++
		assigned++
	}

	applyCoverageFloor(clusters, targets)
	return targets
}

// applyCoverageFloor moves one slot to every missing or thin cluster that got
// nothing, taking it from the best-funded cluster that can spare one. Needy
// clusters are served in planning order; a cluster with no donor stays at zero.
func applyCoverageFloor(clusters []model.KeywordCluster, targets []int) {
	for i, c := range clusters {
		if !c.CoverageState.NeedsCoverage() || targets[i] != 0 {
			continue
		}

		donor := -1
		for j := range clusters {
			if j == i || targets[j] <= 1 {
				continue
			}
			if donor < 0 || betterDonor(clusters, targets, j, donor) {
				donor = j
			}
		}
		if donor < 0 {
			continue
		}

		targets[donor]--
		targets[i] = 1
	}
}

func betterDonor(clusters []model.KeywordCluster, targets []int, a, b int) bool {
	if targets[a] != targets[b] {
		return targets[a] > targets[b]
	}
	if clusters[a].Weight != clusters[b].Weight {
		return clusters[a].Weight > clusters[b].Weight
	}
	if clusters[a].Label != clusters[b].Label {
		return clusters[a].Label < clusters[b].Label
	}
	return clusters[a].ID < clusters[b].ID
}
