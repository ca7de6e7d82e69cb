package service

import (
	"time"

	"basegraph.app/cadence/internal/metrics"
	"basegraph.app/cadence/internal/planning"
	"basegraph.app/cadence/internal/queue"
	"basegraph.app/cadence/internal/store"
)

type ServicesConfig struct {
	Stores         *store.Stores
	TxRunner       TxRunner
	Engine         *planning.Engine
	Producer       queue.Producer // nil disables async refresh
	Metrics        metrics.Recorder
	DefaultHorizon int
	Now            func() time.Time
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{cfg: cfg}
}

func (s *Services) Projects() ProjectService {
	return NewProjectService(s.cfg.Stores.Projects())
}

func (s *Services) Plans() PlanService {
	return NewPlanService(PlanServiceDeps{
		TxRunner:       s.cfg.TxRunner,
		Projects:       s.cfg.Stores.Projects(),
		Plans:          s.cfg.Stores.Plans(),
		Engine:         s.cfg.Engine,
		Producer:       s.cfg.Producer,
		Metrics:        s.cfg.Metrics,
		DefaultHorizon: s.cfg.DefaultHorizon,
		Now:            s.cfg.Now,
	})
}

func (s *Services) Exports() ExportService {
	return NewExportService(s.Plans())
}
