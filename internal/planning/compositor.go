package planning

import (
	"fmt"
	"sort"
	"time"

	"basegraph.app/cadence/internal/model"
)

const newsletterClusterCount = 2

// newsletterClusters returns the clusters the week's newsletter aggregates:
// the most used clusters of that week (ties by weight desc, then label), padded
// from the front of the planning order.
func (r *run) newsletterClusters(monday time.Time) []int {
	usage := r.weekly[WeekKey(monday)]

	ranked := make([]int, 0, len(usage))
	for idx, count := range usage {
		if count > 0 {
			ranked = append(ranked, idx)
		}
	}
	sort.Slice(ranked, func(a, b int) bool {
		ia, ib := ranked[a], ranked[b]
		if usage[ia] != usage[ib] {
			return usage[ia] > usage[ib]
		}
		// planning order already encodes weight desc, label asc, id asc
		return ia < ib
	})
	if len(ranked) > newsletterClusterCount {
		ranked = ranked[:newsletterClusterCount]
	}

	for idx := 0; idx < len(r.clusters) && len(ranked) < newsletterClusterCount; idx++ {
		if !containsIndex(ranked, idx) {
			ranked = append(ranked, idx)
		}
	}
	return ranked
}

// mergeClusters builds the pseudo-cluster a newsletter item is written about.
func mergeClusters(first, second model.KeywordCluster) model.KeywordCluster {
	secondary := make([]string, 0, len(first.SecondaryKeywords)+len(second.SecondaryKeywords))
	secondary = append(secondary, first.SecondaryKeywords...)
	secondary = append(secondary, second.SecondaryKeywords...)

	return model.KeywordCluster{
		ID:                first.ID + "+" + second.ID,
		Label:             first.Label + " & " + second.Label,
		PrimaryKeyword:    first.PrimaryKeyword,
		SecondaryKeywords: truncateKeywords(secondary),
		PerformanceState:  first.PerformanceState,
		CoverageState:     first.CoverageState,
		Weight:            first.Weight,
	}
}

func newsletterNote(picked []model.KeywordCluster) string {
	if len(picked) == 1 {
		return fmt.Sprintf("Weekly digest featuring %s", picked[0].Label)
	}
	return fmt.Sprintf("Weekly digest combining %s and %s", picked[0].Label, picked[1].Label)
}

// newsletterCluster resolves the cluster for the newsletter of the week
// starting at monday. ok is false when the run has no clusters at all.
func (r *run) newsletterCluster(monday time.Time) (cluster model.KeywordCluster, note string, ok bool) {
	idxs := r.newsletterClusters(monday)
	if len(idxs) == 0 {
		return model.KeywordCluster{}, "", false
	}

	picked := make([]model.KeywordCluster, len(idxs))
	for i, idx := range idxs {
		picked[i] = r.clusters[idx]
	}
	if len(picked) == 1 {
		return picked[0], newsletterNote(picked), true
	}
	return mergeClusters(picked[0], picked[1]), newsletterNote(picked), true
}

func containsIndex(idxs []int, idx int) bool {
	for _, v := range idxs {
		if v == idx {
			return true
		}
	}
	return false
}
