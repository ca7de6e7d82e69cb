package model

import "time"

type Project struct {
	ID                int64            `json:"id"`
	WorkspaceID       int64            `json:"workspace_id"`
	Name              string           `json:"name"`
	Slug              string           `json:"slug"`
	PrimaryKeywords   []string         `json:"primary_keywords"`
	SecondaryKeywords []string         `json:"secondary_keywords"`
	InternalLinks     []LinkSuggestion `json:"internal_links"`
	ExternalLinks     []LinkSuggestion `json:"external_links"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Ready reports whether the project has enough keyword data to be planned.
func (p Project) Ready() bool {
	for _, kw := range p.PrimaryKeywords {
		if kw != "" {
			return true
		}
	}
	return false
}
