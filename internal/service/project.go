package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"basegraph.app/cadence/common"
	"basegraph.app/cadence/common/id"
	"basegraph.app/cadence/common/logger"
	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/store"
)

type CreateProjectParams struct {
	WorkspaceID       int64
	Name              string
	Slug              string
	PrimaryKeywords   []string
	SecondaryKeywords []string
	InternalLinks     []model.LinkSuggestion
	ExternalLinks     []model.LinkSuggestion
}

type ProjectService interface {
	Create(ctx context.Context, params CreateProjectParams) (*model.Project, error)
	Get(ctx context.Context, id int64) (*model.Project, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Project, error)
}

type projectService struct {
	projects store.ProjectStore
}

func NewProjectService(projects store.ProjectStore) ProjectService {
	return &projectService{projects: projects}
}

func (s *projectService) Create(ctx context.Context, params CreateProjectParams) (*model.Project, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		WorkspaceID: logger.Ptr(params.WorkspaceID),
		Component:   "cadence.service.project",
	})

	slug, err := s.ensureSlug(ctx, params.WorkspaceID, params.Name, params.Slug)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		ID:                id.New(),
		WorkspaceID:       params.WorkspaceID,
		Name:              strings.TrimSpace(params.Name),
		Slug:              slug,
		PrimaryKeywords:   cleanKeywords(params.PrimaryKeywords),
		SecondaryKeywords: cleanKeywords(params.SecondaryKeywords),
		InternalLinks:     params.InternalLinks,
		ExternalLinks:     params.ExternalLinks,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	slog.InfoContext(ctx, "project created",
		"project_id", project.ID,
		"primary_keywords", len(project.PrimaryKeywords))
	return project, nil
}

func (s *projectService) Get(ctx context.Context, id int64) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return project, nil
}

func (s *projectService) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Project, error) {
	projects, err := s.projects.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// ensureSlug derives a slug from the requested one or the name and suffixes
// it until it is unique within the workspace.
func (s *projectService) ensureSlug(ctx context.Context, workspaceID int64, name, requested string) (string, error) {
	input := name
	if strings.TrimSpace(requested) != "" {
		input = requested
	}

	base, err := common.Slugify(input, "project")
	if err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}

	existing, err := s.projects.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return "", fmt.Errorf("checking slug availability: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		taken[p.Slug] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base, nil
	}
	for i := 1; i <= 20; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unable to find available slug for %q", base)
}

// cleanKeywords trims keywords and drops blanks and case-insensitive duplicates.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, kw := range in {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}
