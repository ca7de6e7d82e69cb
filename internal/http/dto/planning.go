package dto

import "basegraph.app/cadence/internal/model"

// PreviewRequest runs either planning mode without persisting anything.
// Bootstrap reads Project; refresh reads Clusters and the link lists.
type PreviewRequest struct {
	Mode         model.PlanMode         `json:"mode" binding:"required,oneof=bootstrap refresh"`
	Project      PreviewProject         `json:"project"`
	StartDate    string                 `json:"start_date"`
	Cadence      model.Cadence          `json:"cadence"`
	Channels     []string               `json:"channels"`
	HorizonWeeks int                    `json:"horizon_weeks" binding:"omitempty,min=0,max=52"`
	SourcePlanID string                 `json:"source_plan_id"`
	ProposalName string                 `json:"proposal_name"`
	Clusters     []model.KeywordCluster `json:"clusters"`
}

type PreviewProject struct {
	Name              string                 `json:"name"`
	PrimaryKeywords   []string               `json:"primary_keywords"`
	SecondaryKeywords []string               `json:"secondary_keywords"`
	InternalLinks     []model.LinkSuggestion `json:"internal_links"`
	ExternalLinks     []model.LinkSuggestion `json:"external_links"`
}

type DraftResponse struct {
	PlanID       int64    `json:"plan_id,string"`
	ItemID       int64    `json:"item_id,string"`
	Headline     string   `json:"headline"`
	Summary      string   `json:"summary"`
	Outline      []string `json:"outline"`
	CallToAction string   `json:"call_to_action"`
}
