package service

import (
	"context"

	"basegraph.app/cadence/internal/export"
)

type ExportService interface {
	RenderMarkdown(ctx context.Context, planID int64) (string, error)
	RenderHTML(ctx context.Context, planID int64) (string, error)
}

type exportService struct {
	plans PlanService
}

func NewExportService(plans PlanService) ExportService {
	return &exportService{plans: plans}
}

func (s *exportService) RenderMarkdown(ctx context.Context, planID int64) (string, error) {
	detail, err := s.plans.Get(ctx, planID)
	if err != nil {
		return "", err
	}
	return export.Markdown(export.FromDetail(*detail)), nil
}

func (s *exportService) RenderHTML(ctx context.Context, planID int64) (string, error) {
	detail, err := s.plans.Get(ctx, planID)
	if err != nil {
		return "", err
	}
	return export.HTML(export.FromDetail(*detail))
}
