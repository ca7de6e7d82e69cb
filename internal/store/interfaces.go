package store

import (
	"context"
	"errors"

	"basegraph.app/cadence/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ProjectStore defines the contract for project data access
type ProjectStore interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Project, error)
}

// PlanStore defines the contract for plan and plan item data access
type PlanStore interface {
	GetByID(ctx context.Context, id int64) (*model.Plan, error)
	// Create inserts the plan and its items. Run it inside a transaction so
	// both land together.
	Create(ctx context.Context, plan *model.Plan, items []model.PlanItem) error
	ListItems(ctx context.Context, planID int64) ([]model.PlanItem, error)
	GetItem(ctx context.Context, planID, itemID int64) (*model.PlanItem, error)
	ListByProject(ctx context.Context, projectID int64) ([]model.Plan, error)
	UpdateStatus(ctx context.Context, id int64, status model.PlanStatus) error
}
