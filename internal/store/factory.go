package store

import (
	"basegraph.app/cadence/core/db"
)

// Stores hands out stores bound to either the pool or an open transaction.
type Stores struct {
	db db.DBTX
}

func NewStores(conn db.DBTX) *Stores {
	return &Stores{db: conn}
}

func (s *Stores) Projects() ProjectStore {
	return newProjectStore(s.db)
}

func (s *Stores) Plans() PlanStore {
	return newPlanStore(s.db)
}
