package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"basegraph.app/cadence/core/db"
	"basegraph.app/cadence/internal/model"
)

const planColumns = `id, project_id, name, status, start_date, cadence, channels, horizon_weeks,
	source_plan_id, diagnostics, created_at, updated_at`

const planItemColumns = `id, plan_id, position, publish_date, channel, title, primary_keyword,
	secondary_keywords, cluster_id, cluster_label, note, internal_links, external_links`

type planStore struct {
	db db.DBTX
}

func newPlanStore(conn db.DBTX) PlanStore {
	return &planStore{db: conn}
}

func (s *planStore) GetByID(ctx context.Context, id int64) (*model.Plan, error) {
	plan, err := scanPlan(s.db.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planStore) Create(ctx context.Context, plan *model.Plan, items []model.PlanItem) error {
	cadence, err := json.Marshal(plan.Cadence)
	if err != nil {
		return fmt.Errorf("encoding cadence: %w", err)
	}
	channels, err := encodeJSON(plan.Channels)
	if err != nil {
		return err
	}
	diagnostics, err := json.Marshal(plan.Diagnostics)
	if err != nil {
		return fmt.Errorf("encoding diagnostics: %w", err)
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO plans (id, project_id, name, status, start_date, cadence, channels, horizon_weeks, source_plan_id, diagnostics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+planColumns,
		plan.ID, plan.ProjectID, plan.Name, string(plan.Status), plan.StartDate,
		cadence, channels, plan.HorizonWeeks, plan.SourcePlanID, diagnostics,
	)
	created, err := scanPlan(row)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	*plan = *created

	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range items {
		item := &items[i]
		item.PlanID = plan.ID

		secondary, err := encodeJSON(item.SecondaryKeywords)
		if err != nil {
			return err
		}
		internal, err := encodeJSON(item.InternalLinks)
		if err != nil {
			return err
		}
		external, err := encodeJSON(item.ExternalLinks)
		if err != nil {
			return err
		}

		batch.Queue(`
			INSERT INTO plan_items (id, plan_id, position, publish_date, channel, title, primary_keyword,
				secondary_keywords, cluster_id, cluster_label, note, internal_links, external_links)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			item.ID, item.PlanID, item.Position, item.PublishDate, string(item.Channel), item.Title,
			item.PrimaryKeyword, secondary, item.ClusterID, item.ClusterLabel, item.Note, internal, external,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("inserting plan item: %w", err)
		}
	}
	return results.Close()
}

func (s *planStore) ListItems(ctx context.Context, planID int64) ([]model.PlanItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+planItemColumns+` FROM plan_items WHERE plan_id = $1 ORDER BY position`,
		planID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.PlanItem{}
	for rows.Next() {
		item, err := scanPlanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *planStore) GetItem(ctx context.Context, planID, itemID int64) (*model.PlanItem, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+planItemColumns+` FROM plan_items WHERE plan_id = $1 AND id = $2`,
		planID, itemID,
	)
	item, err := scanPlanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *planStore) ListByProject(ctx context.Context, projectID int64) ([]model.Plan, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+planColumns+` FROM plans WHERE project_id = $1 ORDER BY created_at DESC, id DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []model.Plan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (s *planStore) UpdateStatus(ctx context.Context, id int64, status model.PlanStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE plans SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (*model.Plan, error) {
	var (
		p                              model.Plan
		status                         string
		cadence, channels, diagnostics []byte
	)
	if err := row.Scan(
		&p.ID, &p.ProjectID, &p.Name, &status, &p.StartDate,
		&cadence, &channels, &p.HorizonWeeks, &p.SourcePlanID, &diagnostics,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = model.PlanStatus(status)

	if err := json.Unmarshal(cadence, &p.Cadence); err != nil {
		return nil, fmt.Errorf("decoding cadence: %w", err)
	}
	var err error
	if p.Channels, err = decodeJSON[model.Channel](channels); err != nil {
		return nil, err
	}
	if len(diagnostics) > 0 {
		if err := json.Unmarshal(diagnostics, &p.Diagnostics); err != nil {
			return nil, fmt.Errorf("decoding diagnostics: %w", err)
		}
	}
	return &p, nil
}

func scanPlanItem(row pgx.Row) (*model.PlanItem, error) {
	var (
		it                            model.PlanItem
		channel                       string
		secondary, internal, external []byte
	)
	if err := row.Scan(
		&it.ID, &it.PlanID, &it.Position, &it.PublishDate, &channel, &it.Title, &it.PrimaryKeyword,
		&secondary, &it.ClusterID, &it.ClusterLabel, &it.Note, &internal, &external,
	); err != nil {
		return nil, err
	}
	it.Channel = model.Channel(channel)

	var err error
	if it.SecondaryKeywords, err = decodeJSON[string](secondary); err != nil {
		return nil, err
	}
	if it.InternalLinks, err = decodeJSON[model.LinkSuggestion](internal); err != nil {
		return nil, err
	}
	if it.ExternalLinks, err = decodeJSON[model.LinkSuggestion](external); err != nil {
		return nil, err
	}
	return &it, nil
}
