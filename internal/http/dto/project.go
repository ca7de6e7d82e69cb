package dto

import (
	"time"

	"basegraph.app/cadence/internal/model"
)

type CreateProjectRequest struct {
	WorkspaceID       int64                  `json:"workspace_id,string" binding:"required"`
	Name              string                 `json:"name" binding:"required,min=1,max=255"`
	Slug              string                 `json:"slug,omitempty" binding:"omitempty,max=255"`
	PrimaryKeywords   []string               `json:"primary_keywords"`
	SecondaryKeywords []string               `json:"secondary_keywords"`
	InternalLinks     []model.LinkSuggestion `json:"internal_links"`
	ExternalLinks     []model.LinkSuggestion `json:"external_links"`
}

type ProjectResponse struct {
	ID                int64                  `json:"id,string"`
	WorkspaceID       int64                  `json:"workspace_id,string"`
	Name              string                 `json:"name"`
	Slug              string                 `json:"slug"`
	PrimaryKeywords   []string               `json:"primary_keywords"`
	SecondaryKeywords []string               `json:"secondary_keywords"`
	InternalLinks     []model.LinkSuggestion `json:"internal_links"`
	ExternalLinks     []model.LinkSuggestion `json:"external_links"`
	Ready             bool                   `json:"ready"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func ToProjectResponse(p *model.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:                p.ID,
		WorkspaceID:       p.WorkspaceID,
		Name:              p.Name,
		Slug:              p.Slug,
		PrimaryKeywords:   nonNil(p.PrimaryKeywords),
		SecondaryKeywords: nonNil(p.SecondaryKeywords),
		InternalLinks:     nonNil(p.InternalLinks),
		ExternalLinks:     nonNil(p.ExternalLinks),
		Ready:             p.Ready(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
