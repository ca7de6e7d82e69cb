package planning

import (
	"time"

	"basegraph.app/cadence/internal/model"
)

// run owns the working state of one planning invocation. It is never shared
// between calls.
type run struct {
	clusters []model.KeywordCluster

	// remaining is nil in bootstrap mode, where every cluster is always eligible.
	remaining []int
	quotas    []int

	pointer           int
	ledger            map[string][]time.Time
	weekly            map[string]map[int]int
	assigned          []int
	collisionsAvoided int
	duplicateIDs      []string
}

func newRun(clusters []model.KeywordCluster, quotas []int) *run {
	r := &run{
		clusters: clusters,
		quotas:   quotas,
		ledger:   make(map[string][]time.Time),
		weekly:   make(map[string]map[int]int),
		assigned: make([]int, len(clusters)),
	}
	if quotas != nil {
		r.remaining = append([]int(nil), quotas...)
	}
	return r
}

func (r *run) eligible(idx int) bool {
	return r.remaining == nil || r.remaining[idx] > 0
}

// collides reports whether the cluster's primary keyword was already placed
// within the collision window of date, in either direction.
func (r *run) collides(idx int, date time.Time) bool {
	for _, used := range r.ledger[keywordKey(r.clusters[idx].PrimaryKeyword)] {
		if absDays(used, date) <= CollisionWindowDays {
			return true
		}
	}
	return false
}

// pick chooses the cluster for a slot on date, or returns -1 when no cluster
// has quota left. The first eligible cluster from the pointer is preferred; if
// its keyword collides, the first eligible non-colliding cluster after it is
// used instead. When every alternative collides the preferred one is kept.
func (r *run) pick(date time.Time) int {
	n := len(r.clusters)
	if n == 0 {
		return -1
	}

	preferred := -1
	for scan := 0; scan < n; scan++ {
		idx := (r.pointer + scan) % n
		if r.eligible(idx) {
			preferred = idx
			break
		}
	}
	if preferred < 0 {
		return -1
	}
	if !r.collides(preferred, date) {
		return preferred
	}

	for k := 1; k < n; k++ {
		idx := (preferred + k) % n
		if r.eligible(idx) && !r.collides(idx, date) {
			r.collisionsAvoided++
			return idx
		}
	}
	return preferred
}

// commit books the slot for the cluster and moves the pointer past it.
func (r *run) commit(idx int, slot Slot) {
	if r.remaining != nil {
		r.remaining[idx]--
	}
	key := keywordKey(r.clusters[idx].PrimaryKeyword)
	r.ledger[key] = append(r.ledger[key], slot.Date)
	r.pointer = (idx + 1) % len(r.clusters)
	r.record(slot.WeekKey, idx)
}

// record counts a non-newsletter item for the cluster in the given week.
func (r *run) record(weekKey string, idx int) {
	usage, ok := r.weekly[weekKey]
	if !ok {
		usage = make(map[int]int)
		r.weekly[weekKey] = usage
	}
	usage[idx]++
	r.assigned[idx]++
}
