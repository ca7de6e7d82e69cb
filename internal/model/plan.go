package model

import "time"

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusProposal PlanStatus = "proposal"
	PlanStatusArchived PlanStatus = "archived"
)

type Plan struct {
	ID           int64       `json:"id"`
	ProjectID    int64       `json:"project_id"`
	Name         string      `json:"name"`
	Status       PlanStatus  `json:"status"`
	StartDate    time.Time   `json:"start_date"`
	Cadence      Cadence     `json:"cadence"`
	Channels     []Channel   `json:"channels"`
	HorizonWeeks int         `json:"horizon_weeks"`
	SourcePlanID *int64      `json:"source_plan_id,omitempty"`
	Diagnostics  Diagnostics `json:"diagnostics"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// PlanItem is a persisted PlanItemDraft. Position preserves the engine's
// output order.
type PlanItem struct {
	ID       int64 `json:"id"`
	PlanID   int64 `json:"plan_id"`
	Position int   `json:"position"`
	PlanItemDraft
}

// PlanDetail is a plan together with its items in publication order.
type PlanDetail struct {
	Plan  Plan       `json:"plan"`
	Items []PlanItem `json:"items"`
}

// Drafts returns the items as engine drafts, in order.
func (d PlanDetail) Drafts() []PlanItemDraft {
	drafts := make([]PlanItemDraft, len(d.Items))
	for i, it := range d.Items {
		drafts[i] = it.PlanItemDraft
	}
	return drafts
}
