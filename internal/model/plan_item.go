package model

import "time"

// PlanItemDraft is one dated, channel-specific publication produced by the
// planning engine before it is persisted.
type PlanItemDraft struct {
	PublishDate       time.Time        `json:"publish_date"`
	Channel           Channel          `json:"channel"`
	Title             string           `json:"title"`
	PrimaryKeyword    string           `json:"primary_keyword"`
	SecondaryKeywords []string         `json:"secondary_keywords"`
	ClusterID         string           `json:"cluster_id"`
	ClusterLabel      string           `json:"cluster_label"`
	Note              string           `json:"note,omitempty"`
	InternalLinks     []LinkSuggestion `json:"internal_link_suggestions"`
	ExternalLinks     []LinkSuggestion `json:"external_link_suggestions"`
}

type PlanMode string

const (
	PlanModeBootstrap PlanMode = "bootstrap"
	PlanModeRefresh   PlanMode = "refresh"
)

type ClusterStat struct {
	ID               string           `json:"id"`
	Label            string           `json:"label"`
	PerformanceState PerformanceState `json:"performance_state,omitempty"`
	CoverageState    CoverageState    `json:"coverage_state,omitempty"`
	Weight           float64          `json:"weight"`
	Rationale        string           `json:"rationale,omitempty"`
	Quota            int              `json:"quota"`
	Assigned         int              `json:"assigned"`
}

// Diagnostics summarizes one planning run for observability and traceability.
type Diagnostics struct {
	Mode              PlanMode      `json:"mode"`
	StartDate         time.Time     `json:"start_date"`
	HorizonWeeks      int           `json:"horizon_weeks"`
	SourcePlanID      string        `json:"source_plan_id,omitempty"`
	TotalSlots        int           `json:"total_slots"`
	TotalItems        int           `json:"total_items"`
	DroppedSlots      int           `json:"dropped_slots"`
	CollisionsAvoided int           `json:"collisions_avoided"`
	ClusterStats      []ClusterStat `json:"cluster_stats"`

	// DuplicateClusterIDs lists input clusters skipped because an earlier
	// cluster already used the id.
	DuplicateClusterIDs []string `json:"duplicate_cluster_ids,omitempty"`
}

type PlanGenerationResult struct {
	Items       []PlanItemDraft `json:"items"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}

type PlanProposal struct {
	Name      string          `json:"name"`
	StartDate time.Time       `json:"start_date"`
	Cadence   Cadence         `json:"cadence"`
	Channels  []Channel       `json:"channels"`
	Items     []PlanItemDraft `json:"items"`
}

type PlanRefreshResult struct {
	Proposal    PlanProposal `json:"proposal"`
	Diagnostics Diagnostics  `json:"diagnostics"`
}
