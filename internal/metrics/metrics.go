package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"basegraph.app/cadence/internal/model"
)

// Recorder receives planning and worker measurements. Nop discards them.
type Recorder interface {
	ObservePlan(diag model.Diagnostics, items []model.PlanItemDraft, elapsed time.Duration)
	ObserveRefreshTask(outcome string)
}

// Refresh task outcomes.
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeRequeued   = "requeued"
	OutcomeDeadLetter = "dead_letter"
	OutcomeDropped    = "dropped"
)

type Nop struct{}

func (Nop) ObservePlan(model.Diagnostics, []model.PlanItemDraft, time.Duration) {}
func (Nop) ObserveRefreshTask(string)                                           {}

// Prometheus records planning runs as counters and histograms.
type Prometheus struct {
	plans             *prometheus.CounterVec
	slots             *prometheus.CounterVec
	items             *prometheus.CounterVec
	droppedSlots      *prometheus.CounterVec
	collisionsAvoided *prometheus.CounterVec
	underservedNeedy  *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	refreshTasks      *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus registers the planning collectors on reg (the default
// registerer when nil) under namespace ("cadence" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "cadence"
	}

	p := &Prometheus{
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "runs_total",
			Help:      "Planning runs by mode (bootstrap, refresh).",
		}, []string{"mode"}),
		slots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "slots_total",
			Help:      "Calendar slots generated, newsletter weeks included.",
		}, []string{"mode"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "items_total",
			Help:      "Plan items emitted by mode and channel.",
		}, []string{"mode", "channel"}),
		droppedSlots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "dropped_slots_total",
			Help:      "Slots left empty because every quota was spent.",
		}, []string{"mode"}),
		collisionsAvoided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "collisions_avoided_total",
			Help:      "Keyword collisions resolved by substituting another cluster.",
		}, []string{"mode"}),
		underservedNeedy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "underserved_clusters_total",
			Help:      "Missing or thin clusters that ended a refresh run without a slot.",
		}, []string{"mode"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planning",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a planning run including persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}, []string{"mode"}),
		refreshTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "refresh_tasks_total",
			Help:      "Asynchronous refresh tasks by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		p.plans, p.slots, p.items, p.droppedSlots, p.collisionsAvoided,
		p.underservedNeedy, p.duration, p.refreshTasks,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) ObservePlan(diag model.Diagnostics, items []model.PlanItemDraft, elapsed time.Duration) {
	mode := string(diag.Mode)

	p.plans.WithLabelValues(mode).Inc()
	p.slots.WithLabelValues(mode).Add(float64(diag.TotalSlots))
	p.droppedSlots.WithLabelValues(mode).Add(float64(diag.DroppedSlots))
	p.collisionsAvoided.WithLabelValues(mode).Add(float64(diag.CollisionsAvoided))
	p.duration.WithLabelValues(mode).Observe(elapsed.Seconds())

	for _, it := range items {
		p.items.WithLabelValues(mode, string(it.Channel)).Inc()
	}

	if diag.Mode != model.PlanModeRefresh {
		return
	}
	for _, stat := range diag.ClusterStats {
		if stat.CoverageState.NeedsCoverage() && stat.Assigned == 0 {
			p.underservedNeedy.WithLabelValues(mode).Inc()
		}
	}
}

func (p *Prometheus) ObserveRefreshTask(outcome string) {
	p.refreshTasks.WithLabelValues(outcome).Inc()
}
