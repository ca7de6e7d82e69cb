package model

type PerformanceState string

const (
	PerformanceHigh    PerformanceState = "high"
	PerformanceMedium  PerformanceState = "medium"
	PerformanceLow     PerformanceState = "low"
	PerformanceUnknown PerformanceState = "unknown"
)

type CoverageState string

const (
	CoverageHealthy  CoverageState = "healthy"
	CoverageThin     CoverageState = "thin"
	CoverageMissing  CoverageState = "missing"
	CoverageDrifting CoverageState = "drifting"
)

// NeedsCoverage reports whether the cluster is under-published and should be
// guaranteed at least one slot when quotas are allocated.
func (s CoverageState) NeedsCoverage() bool {
	return s == CoverageMissing || s == CoverageThin
}

// KeywordCluster is a topic bucket planned as a unit. Clusters are read-only
// inputs for the duration of a planning run.
type KeywordCluster struct {
	ID                string           `json:"id" yaml:"id"`
	Label             string           `json:"label" yaml:"label"`
	PrimaryKeyword    string           `json:"primary_keyword" yaml:"primary_keyword"`
	SecondaryKeywords []string         `json:"secondary_keywords,omitempty" yaml:"secondary_keywords"`
	PerformanceState  PerformanceState `json:"performance_state,omitempty" yaml:"performance_state"`
	CoverageState     CoverageState    `json:"coverage_state,omitempty" yaml:"coverage_state"`
	Weight            float64          `json:"weight,omitempty" yaml:"weight"`
	Rationale         string           `json:"rationale,omitempty" yaml:"rationale"`
}

// LinkSuggestion is an internal or external link candidate attached to a plan item.
type LinkSuggestion struct {
	URL   string `json:"url" yaml:"url"`
	Title string `json:"title,omitempty" yaml:"title"`
}
