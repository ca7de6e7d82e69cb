package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"basegraph.app/cadence/common/id"
	"basegraph.app/cadence/common/logger"
	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/store"
	"basegraph.app/cadence/internal/topics"
)

const defaultPlanName = "Publication plan"

type GeneratePlanParams struct {
	ProjectID    int64
	Name         string
	StartDate    time.Time // zero means today
	Cadence      model.Cadence
	Channels     []string
	HorizonWeeks int
}

// RefreshPlanParams describes a refresh of SourcePlanID. Nil Cadence, empty
// Channels and a zero HorizonWeeks reuse the source plan's settings. Without
// Clusters the project's keywords are clustered with equal weights.
type RefreshPlanParams struct {
	SourcePlanID int64
	ProposalName string
	HorizonWeeks int
	StartDate    string
	Cadence      *model.Cadence
	Channels     []string
	Clusters     []model.KeywordCluster
	TraceID      string
}

type PlanService interface {
	Generate(ctx context.Context, params GeneratePlanParams) (*model.PlanDetail, error)
	Refresh(ctx context.Context, params RefreshPlanParams) (*model.PlanDetail, error)
	Get(ctx context.Context, id int64) (*model.PlanDetail, error)
	GetItem(ctx context.Context, planID, itemID int64) (*model.PlanItem, error)
	ListByProject(ctx context.Context, projectID int64) ([]model.Plan, error)
	// Accept activates a proposal and archives the plan it was refreshed from.
	Accept(ctx context.Context, proposalID int64) (*model.Plan, error)
	EnqueueRefresh(ctx context.Context, params RefreshPlanParams) (string, error)

	PreviewGenerate(req planning.GenerateRequest) model.PlanGenerationResult
	PreviewRefresh(req planning.RefreshRequest) model.PlanRefreshResult
}

type PlanServiceDeps struct {
	TxRunner       TxRunner
	Projects       store.ProjectStore
	Plans          store.PlanStore
	Engine         *planning.Engine
	Producer       queue.Producer // optional
	Metrics        metrics.Recorder
	DefaultHorizon int
	Now            func() time.Time
}

type planService struct {
	txRunner       TxRunner
	projects       store.ProjectStore
	plans          store.PlanStore
	engine         *planning.Engine
	producer       queue.Producer
	metrics        metrics.Recorder
	defaultHorizon int
	now            func() time.Time
}

func NewPlanService(deps PlanServiceDeps) PlanService {
	s := &planService{
		txRunner:       deps.TxRunner,
		projects:       deps.Projects,
		plans:          deps.Plans,
		engine:         deps.Engine,
		producer:       deps.Producer,
		metrics:        deps.Metrics,
		defaultHorizon: deps.DefaultHorizon,
		now:            deps.Now,
	}
	if s.engine == nil {
		s.engine = planning.New(planning.Collaborators{})
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.defaultHorizon <= 0 {
		s.defaultHorizon = planning.DefaultHorizonWeeks
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *planService) Generate(ctx context.Context, params GeneratePlanParams) (*model.PlanDetail, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ProjectID: logger.Ptr(params.ProjectID),
		Component: "cadence.service.plan",
	})
	started := time.Now()

	project, err := s.loadProject(ctx, params.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.Ready() {
		return nil, ErrProjectNotReady
	}

	start := params.StartDate
	if start.IsZero() {
		start = s.now()
	}

	result := s.engine.GeneratePublicationPlan(planning.GenerateRequest{
		Project: planning.ProjectContext{
			Name:              project.Name,
			PrimaryKeywords:   project.PrimaryKeywords,
			SecondaryKeywords: project.SecondaryKeywords,
			InternalLinks:     project.InternalLinks,
			ExternalLinks:     project.ExternalLinks,
		},
		StartDate:    start,
		Cadence:      params.Cadence,
		Channels:     params.Channels,
		HorizonWeeks: s.horizon(params.HorizonWeeks),
	})

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = defaultPlanName
	}

	plan := &model.Plan{
		ID:           id.New(),
		ProjectID:    project.ID,
		Name:         name,
		Status:       model.PlanStatusActive,
		StartDate:    result.Diagnostics.StartDate,
		Cadence:      planning.NormalizeCadence(params.Cadence),
		Channels:     planning.NormalizeChannels(params.Channels),
		HorizonWeeks: result.Diagnostics.HorizonWeeks,
		Diagnostics:  result.Diagnostics,
	}

	detail, err := s.persist(ctx, plan, result.Items)
	if err != nil {
		return nil, err
	}

	s.metrics.ObservePlan(result.Diagnostics, result.Items, time.Since(started))
	slog.InfoContext(ctx, "plan generated",
		"plan_id", plan.ID,
		"total_slots", result.Diagnostics.TotalSlots,
		"total_items", result.Diagnostics.TotalItems,
		"collisions_avoided", result.Diagnostics.CollisionsAvoided)
	return detail, nil
}

func (s *planService) Refresh(ctx context.Context, params RefreshPlanParams) (*model.PlanDetail, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PlanID:    logger.Ptr(params.SourcePlanID),
		Component: "cadence.service.plan",
	})
	started := time.Now()

	source, err := s.loadPlan(ctx, params.SourcePlanID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ProjectID: logger.Ptr(source.ProjectID)})

	project, err := s.loadProject(ctx, source.ProjectID)
	if err != nil {
		return nil, err
	}

	clusters := params.Clusters
	if len(clusters) == 0 {
		if !project.Ready() {
			return nil, ErrProjectNotReady
		}
		clusters = topics.ClusterKeywords(project.PrimaryKeywords, project.SecondaryKeywords)
	}

	cadence := source.Cadence
	if params.Cadence != nil {
		cadence = *params.Cadence
	}
	channels := params.Channels
	if len(channels) == 0 {
		channels = channelStrings(source.Channels)
	}
	horizon := params.HorizonWeeks
	if horizon <= 0 {
		horizon = source.HorizonWeeks
	}

	result := s.engine.GenerateRefreshedPlanProposal(planning.RefreshRequest{
		SourcePlanID:  id.Format(source.ID),
		ProposalName:  params.ProposalName,
		HorizonWeeks:  s.horizon(horizon),
		StartDateISO:  params.StartDate,
		Now:           s.now(),
		Cadence:       cadence,
		Channels:      channels,
		Clusters:      clusters,
		InternalLinks: project.InternalLinks,
		ExternalLinks: project.ExternalLinks,
	})

	proposal := result.Proposal
	plan := &model.Plan{
		ID:           id.New(),
		ProjectID:    project.ID,
		Name:         proposal.Name,
		Status:       model.PlanStatusProposal,
		StartDate:    proposal.StartDate,
		Cadence:      proposal.Cadence,
		Channels:     proposal.Channels,
		HorizonWeeks: result.Diagnostics.HorizonWeeks,
		SourcePlanID: logger.Ptr(source.ID),
		Diagnostics:  result.Diagnostics,
	}

	detail, err := s.persist(ctx, plan, proposal.Items)
	if err != nil {
		return nil, err
	}

	s.metrics.ObservePlan(result.Diagnostics, proposal.Items, time.Since(started))
	slog.InfoContext(ctx, "refresh proposal created",
		"proposal_id", plan.ID,
		"clusters", len(result.Diagnostics.ClusterStats),
		"total_slots", result.Diagnostics.TotalSlots,
		"total_items", result.Diagnostics.TotalItems,
		"dropped_slots", result.Diagnostics.DroppedSlots,
		"collisions_avoided", result.Diagnostics.CollisionsAvoided)
	return detail, nil
}

func (s *planService) Get(ctx context.Context, id int64) (*model.PlanDetail, error) {
	plan, err := s.loadPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.plans.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing plan items: %w", err)
	}
	return &model.PlanDetail{Plan: *plan, Items: items}, nil
}

func (s *planService) GetItem(ctx context.Context, planID, itemID int64) (*model.PlanItem, error) {
	if _, err := s.loadPlan(ctx, planID); err != nil {
		return nil, err
	}
	item, err := s.plans.GetItem(ctx, planID, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("loading plan item: %w", err)
	}
	return item, nil
}

func (s *planService) ListByProject(ctx context.Context, projectID int64) ([]model.Plan, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return nil, err
	}
	plans, err := s.plans.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return plans, nil
}

func (s *planService) Accept(ctx context.Context, proposalID int64) (*model.Plan, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		PlanID:    logger.Ptr(proposalID),
		Component: "cadence.service.plan",
	})

	var accepted *model.Plan
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		plans := stores.Plans()

		plan, err := plans.GetByID(ctx, proposalID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("loading proposal: %w", err)
		}
		if plan.Status != model.PlanStatusProposal {
			return ErrPlanNotProposal
		}

		if err := plans.UpdateStatus(ctx, plan.ID, model.PlanStatusActive); err != nil {
			return fmt.Errorf("activating proposal: %w", err)
		}
		plan.Status = model.PlanStatusActive

		if plan.SourcePlanID != nil {
			err := plans.UpdateStatus(ctx, *plan.SourcePlanID, model.PlanStatusArchived)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("archiving source plan: %w", err)
			}
		}

		accepted = plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "proposal accepted", "source_plan_id", accepted.SourcePlanID)
	return accepted, nil
}

func (s *planService) EnqueueRefresh(ctx context.Context, params RefreshPlanParams) (string, error) {
	if s.producer == nil {
		return "", ErrRefreshQueueDown
	}

	source, err := s.loadPlan(ctx, params.SourcePlanID)
	if err != nil {
		return "", err
	}

	messageID, err := s.producer.Enqueue(ctx, queue.RefreshTask{
		SourcePlanID: source.ID,
		ProjectID:    source.ProjectID,
		ProposalName: params.ProposalName,
		HorizonWeeks: params.HorizonWeeks,
		StartDate:    params.StartDate,
		Cadence:      params.Cadence,
		Channels:     params.Channels,
		Clusters:     params.Clusters,
		TraceID:      params.TraceID,
	})
	if err != nil {
		return "", fmt.Errorf("enqueueing refresh: %w", err)
	}
	return messageID, nil
}

func (s *planService) PreviewGenerate(req planning.GenerateRequest) model.PlanGenerationResult {
	started := time.Now()
	if req.StartDate.IsZero() {
		req.StartDate = s.now()
	}
	req.HorizonWeeks = s.horizon(req.HorizonWeeks)

	result := s.engine.GeneratePublicationPlan(req)
	s.metrics.ObservePlan(result.Diagnostics, result.Items, time.Since(started))
	return result
}

func (s *planService) PreviewRefresh(req planning.RefreshRequest) model.PlanRefreshResult {
	started := time.Now()
	if req.Now.IsZero() {
		req.Now = s.now()
	}
	req.HorizonWeeks = s.horizon(req.HorizonWeeks)

	result := s.engine.GenerateRefreshedPlanProposal(req)
	s.metrics.ObservePlan(result.Diagnostics, result.Proposal.Items, time.Since(started))
	return result
}

// persist stores the plan and its items in one transaction.
func (s *planService) persist(ctx context.Context, plan *model.Plan, drafts []model.PlanItemDraft) (*model.PlanDetail, error) {
	items := make([]model.PlanItem, len(drafts))
	for i, d := range drafts {
		items[i] = model.PlanItem{
			ID:            id.New(),
			PlanID:        plan.ID,
			Position:      i,
			PlanItemDraft: d,
		}
	}

	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		return stores.Plans().Create(ctx, plan, items)
	})
	if err != nil {
		return nil, fmt.Errorf("saving plan: %w", err)
	}
	return &model.PlanDetail{Plan: *plan, Items: items}, nil
}

func (s *planService) loadProject(ctx context.Context, id int64) (*model.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return project, nil
}

func (s *planService) loadPlan(ctx context.Context, id int64) (*model.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("loading plan: %w", err)
	}
	return plan, nil
}

func (s *planService) horizon(weeks int) int {
	if weeks <= 0 {
		return s.defaultHorizon
	}
	return weeks
}

func channelStrings(channels []model.Channel) []string {
	out := make([]string, len(channels))
	for i, ch := range channels {
		out[i] = string(ch)
	}
	return out
}
