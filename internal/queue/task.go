package queue

import "basegraph.app/cadence/internal/model"

type TaskType string

const (
	TaskTypePlanRefresh TaskType = "plan_refresh"
)

// RefreshTask asks a worker to build a refresh proposal for an existing plan.
// Zero values fall back to the source plan's settings.
type RefreshTask struct {
	SourcePlanID int64                  `json:"source_plan_id"`
	ProjectID    int64                  `json:"project_id,omitempty"`
	ProposalName string                 `json:"proposal_name,omitempty"`
	HorizonWeeks int                    `json:"horizon_weeks,omitempty"`
	StartDate    string                 `json:"start_date,omitempty"`
	Cadence      *model.Cadence         `json:"cadence,omitempty"`
	Channels     []string               `json:"channels,omitempty"`
	Clusters     []model.KeywordCluster `json:"clusters,omitempty"`

	TraceID string `json:"-"`
	Attempt int    `json:"-"`
}
