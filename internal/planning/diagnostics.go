package planning

import (
	"time"

	"basegraph.app/cadence/internal/model"
)

func (r *run) diagnostics(mode model.PlanMode, start time.Time, horizon int, sourcePlanID string, totalSlots, totalItems int) model.Diagnostics {
	stats := make([]model.ClusterStat, len(r.clusters))
	for i, c := range r.clusters {
		stat := model.ClusterStat{
			ID:               c.ID,
			Label:            c.Label,
			PerformanceState: c.PerformanceState,
			CoverageState:    c.CoverageState,
			Weight:           c.Weight,
			Rationale:        c.Rationale,
			Assigned:         r.assigned[i],
		}
		if r.quotas != nil {
			stat.Quota = r.quotas[i]
		}
		stats[i] = stat
	}

	dropped := totalSlots - totalItems
	if dropped < 0 {
		dropped = 0
	}

	return model.Diagnostics{
		Mode:                mode,
		StartDate:           start,
		HorizonWeeks:        horizon,
		SourcePlanID:        sourcePlanID,
		TotalSlots:          totalSlots,
		TotalItems:          totalItems,
		DroppedSlots:        dropped,
		CollisionsAvoided:   r.collisionsAvoided,
		ClusterStats:        stats,
		DuplicateClusterIDs: r.duplicateIDs,
	}
}
