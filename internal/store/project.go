package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"basegraph.app/cadence/core/db"
	"basegraph.app/cadence/internal/model"
)

const projectColumns = `id, workspace_id, name, slug, primary_keywords, secondary_keywords,
	internal_links, external_links, created_at, updated_at`

type projectStore struct {
	db db.DBTX
}

func newProjectStore(conn db.DBTX) ProjectStore {
	return &projectStore{db: conn}
}

func (s *projectStore) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	row := s.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *projectStore) Create(ctx context.Context, project *model.Project) error {
	primary, err := encodeJSON(project.PrimaryKeywords)
	if err != nil {
		return err
	}
	secondary, err := encodeJSON(project.SecondaryKeywords)
	if err != nil {
		return err
	}
	internal, err := encodeJSON(project.InternalLinks)
	if err != nil {
		return err
	}
	external, err := encodeJSON(project.ExternalLinks)
	if err != nil {
		return err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO projects (id, workspace_id, name, slug, primary_keywords, secondary_keywords, internal_links, external_links)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+projectColumns,
		project.ID, project.WorkspaceID, project.Name, project.Slug, primary, secondary, internal, external,
	)
	created, err := scanProject(row)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	*project = *created
	return nil
}

func (s *projectStore) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Project, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE workspace_id = $1 ORDER BY created_at DESC, id DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var (
		p                                      model.Project
		primary, secondary, internal, external []byte
	)
	if err := row.Scan(
		&p.ID, &p.WorkspaceID, &p.Name, &p.Slug,
		&primary, &secondary, &internal, &external,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.PrimaryKeywords, err = decodeJSON[string](primary); err != nil {
		return nil, err
	}
	if p.SecondaryKeywords, err = decodeJSON[string](secondary); err != nil {
		return nil, err
	}
	if p.InternalLinks, err = decodeJSON[model.LinkSuggestion](internal); err != nil {
		return nil, err
	}
	if p.ExternalLinks, err = decodeJSON[model.LinkSuggestion](external); err != nil {
		return nil, err
	}
	return &p, nil
}
