package dto

import (
	"time"

	"basegraph.app/cadence/internal/model"
)

type GeneratePlanRequest struct {
	Name         string         `json:"name"`
	StartDate    string         `json:"start_date"`
	Cadence      *model.Cadence `json:"cadence"`
	Channels     []string       `json:"channels"`
	HorizonWeeks int            `json:"horizon_weeks" binding:"omitempty,min=0,max=52"`
}

// RefreshPlanRequest fields are all optional; omitted values reuse the
// source plan's settings.
type RefreshPlanRequest struct {
	ProposalName string                 `json:"proposal_name"`
	StartDate    string                 `json:"start_date"`
	Cadence      *model.Cadence         `json:"cadence"`
	Channels     []string               `json:"channels"`
	HorizonWeeks int                    `json:"horizon_weeks" binding:"omitempty,min=0,max=52"`
	Clusters     []model.KeywordCluster `json:"clusters"`
}

type EnqueueRefreshResponse struct {
	MessageID    string `json:"message_id"`
	SourcePlanID int64  `json:"source_plan_id,string"`
}

type PlanResponse struct {
	ID           int64             `json:"id,string"`
	ProjectID    int64             `json:"project_id,string"`
	Name         string            `json:"name"`
	Status       model.PlanStatus  `json:"status"`
	StartDate    string            `json:"start_date"`
	Cadence      model.Cadence     `json:"cadence"`
	Channels     []model.Channel   `json:"channels"`
	HorizonWeeks int               `json:"horizon_weeks"`
	SourcePlanID *int64            `json:"source_plan_id,string,omitempty"`
	Diagnostics  model.Diagnostics `json:"diagnostics"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type PlanItemResponse struct {
	ID                int64                  `json:"id,string"`
	Position          int                    `json:"position"`
	PublishDate       string                 `json:"publish_date"`
	Channel           model.Channel          `json:"channel"`
	Title             string                 `json:"title"`
	PrimaryKeyword    string                 `json:"primary_keyword"`
	SecondaryKeywords []string               `json:"secondary_keywords"`
	ClusterID         string                 `json:"cluster_id"`
	ClusterLabel      string                 `json:"cluster_label"`
	Note              string                 `json:"note,omitempty"`
	InternalLinks     []model.LinkSuggestion `json:"internal_link_suggestions"`
	ExternalLinks     []model.LinkSuggestion `json:"external_link_suggestions"`
}

type PlanDetailResponse struct {
	Plan  *PlanResponse      `json:"plan"`
	Items []PlanItemResponse `json:"items"`
}

type PlanListResponse struct {
	Plans []*PlanResponse `json:"plans"`
}

const dateLayout = "2006-01-02"

func ToPlanResponse(p *model.Plan) *PlanResponse {
	return &PlanResponse{
		ID:           p.ID,
		ProjectID:    p.ProjectID,
		Name:         p.Name,
		Status:       p.Status,
		StartDate:    p.StartDate.UTC().Format(dateLayout),
		Cadence:      p.Cadence,
		Channels:     nonNil(p.Channels),
		HorizonWeeks: p.HorizonWeeks,
		SourcePlanID: p.SourcePlanID,
		Diagnostics:  p.Diagnostics,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToPlanItemResponse(it model.PlanItem) PlanItemResponse {
	return PlanItemResponse{
		ID:                it.ID,
		Position:          it.Position,
		PublishDate:       it.PublishDate.UTC().Format(dateLayout),
		Channel:           it.Channel,
		Title:             it.Title,
		PrimaryKeyword:    it.PrimaryKeyword,
		SecondaryKeywords: nonNil(it.SecondaryKeywords),
		ClusterID:         it.ClusterID,
		ClusterLabel:      it.ClusterLabel,
		Note:              it.Note,
		InternalLinks:     nonNil(it.InternalLinks),
		ExternalLinks:     nonNil(it.ExternalLinks),
	}
}

func ToPlanDetailResponse(d *model.PlanDetail) *PlanDetailResponse {
	items := make([]PlanItemResponse, len(d.Items))
	for i, it := range d.Items {
		items[i] = ToPlanItemResponse(it)
	}
	return &PlanDetailResponse{Plan: ToPlanResponse(&d.Plan), Items: items}
}

func ToPlanListResponse(plans []model.Plan) *PlanListResponse {
	out := make([]*PlanResponse, len(plans))
	for i := range plans {
		out[i] = ToPlanResponse(&plans[i])
	}
	return &PlanListResponse{Plans: out}
}
