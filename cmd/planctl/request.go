package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
)

// planRequest is the YAML document planctl reads.
type planRequest struct {
	Mode         model.PlanMode         `yaml:"mode"`
	Name         string                 `yaml:"name"`
	StartDate    string                 `yaml:"start_date"`
	HorizonWeeks int                    `yaml:"horizon_weeks"`
	Cadence      model.Cadence          `yaml:"cadence"`
	Channels     []string               `yaml:"channels"`
	Project      projectSpec            `yaml:"project"`
	SourcePlanID string                 `yaml:"source_plan_id"`
	Clusters     []model.KeywordCluster `yaml:"clusters"`
}

type projectSpec struct {
	Name              string                 `yaml:"name"`
	PrimaryKeywords   []string               `yaml:"primary_keywords"`
	SecondaryKeywords []string               `yaml:"secondary_keywords"`
	InternalLinks     []model.LinkSuggestion `yaml:"internal_links"`
	ExternalLinks     []model.LinkSuggestion `yaml:"external_links"`
}

func loadRequest(path string) (*planRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request: %w", err)
	}
	return parseRequest(raw)
}

func parseRequest(raw []byte) (*planRequest, error) {
	var req planRequest
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}

	switch req.Mode {
	case "":
		req.Mode = model.PlanModeBootstrap
	case model.PlanModeBootstrap, model.PlanModeRefresh:
	default:
		return nil, fmt.Errorf("mode must be bootstrap or refresh, got %q", req.Mode)
	}

	if req.Mode == model.PlanModeBootstrap && req.StartDate != "" {
		if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
			return nil, fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
		}
	}
	return &req, nil
}

func (r *planRequest) generateRequest(now time.Time) planning.GenerateRequest {
	start := now
	if r.StartDate != "" {
		start, _ = time.Parse("2006-01-02", r.StartDate)
	}
	return planning.GenerateRequest{
		Project: planning.ProjectContext{
			Name:              r.Project.Name,
			PrimaryKeywords:   r.Project.PrimaryKeywords,
			SecondaryKeywords: r.Project.SecondaryKeywords,
			InternalLinks:     r.Project.InternalLinks,
			ExternalLinks:     r.Project.ExternalLinks,
		},
		StartDate:    start,
		Cadence:      r.Cadence,
		Channels:     r.Channels,
		HorizonWeeks: r.HorizonWeeks,
	}
}

func (r *planRequest) refreshRequest(now time.Time) planning.RefreshRequest {
	return planning.RefreshRequest{
		SourcePlanID:  r.SourcePlanID,
		ProposalName:  r.Name,
		HorizonWeeks:  r.HorizonWeeks,
		StartDateISO:  r.StartDate,
		Now:           now,
		Cadence:       r.Cadence,
		Channels:      r.Channels,
		Clusters:      r.Clusters,
		InternalLinks: r.Project.InternalLinks,
		ExternalLinks: r.Project.ExternalLinks,
	}
}
