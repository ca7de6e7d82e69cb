// Package planning turns weighted keyword clusters into a dated, multi-channel
// publication calendar.
//
// A run expands the cadence into (date, channel) slots, apportions slots to
// clusters, walks the slots with a cyclic pointer while keeping the same
// primary keyword at least two weeks apart, and finally composes the weekly
// newsletter items. The package performs no I/O and keeps all run state local
// to a single call, so an Engine can be shared between goroutines.
package planning
