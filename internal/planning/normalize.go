package planning

import (
	"math"
	"sort"
	"strings"
	"time"

	"basegraph.app/cadence/internal/model"
)

const (
	CollisionWindowDays  = 14
	MaxSecondaryKeywords = 3
	DefaultHorizonWeeks  = 4
	MaxHorizonWeeks      = 26

	minClusterWeight = 0.2
	maxClusterWeight = 3.0
)

var defaultDaysOfWeek = []int{2, 4}

// NormalizeCadence keeps weekdays 1..7, deduplicated and ascending, and falls
// back to Tuesday/Thursday when nothing valid remains.
func NormalizeCadence(c model.Cadence) model.Cadence {
	freq := model.FrequencyWeekly
	if model.Frequency(strings.ToLower(strings.TrimSpace(string(c.Frequency)))) == model.FrequencyBiweekly {
		freq = model.FrequencyBiweekly
	}

	seen := make(map[int]struct{}, len(c.DaysOfWeek))
	days := make([]int, 0, len(c.DaysOfWeek))
	for _, d := range c.DaysOfWeek {
		if d < 1 || d > 7 {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	if len(days) == 0 {
		days = append(days, defaultDaysOfWeek...)
	}
	sort.Ints(days)

	return model.Cadence{Frequency: freq, DaysOfWeek: days}
}

// NormalizeChannels drops unknown values and duplicates and returns the rest in
// channel priority order. An empty result falls back to the blog channel.
func NormalizeChannels(raw []string) []model.Channel {
	present := make(map[model.Channel]bool, len(raw))
	for _, r := range raw {
		if ch, ok := model.ParseChannel(r); ok {
			present[ch] = true
		}
	}

	channels := make([]model.Channel, 0, len(present))
	for _, ch := range model.ChannelPriority {
		if present[ch] {
			channels = append(channels, ch)
		}
	}
	if len(channels) == 0 {
		channels = append(channels, model.ChannelBlog)
	}
	return channels
}

func NormalizeHorizon(weeks int) int {
	if weeks <= 0 {
		return DefaultHorizonWeeks
	}
	if weeks > MaxHorizonWeeks {
		return MaxHorizonWeeks
	}
	return weeks
}

// ParseStartDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// A timestamp contributes the calendar date in its own offset, not the UTC
// date: 2025-01-06T23:00:00-05:00 starts on January 6. Anything else resolves
// to the day of now.
func ParseStartDate(iso string, now time.Time) time.Time {
	iso = strings.TrimSpace(iso)
	if t, err := time.Parse(time.DateOnly, iso); err == nil {
		return DayStart(t)
	}
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return DayStart(t)
	}
	return DayStart(now)
}

// DayStart truncates t to midnight UTC of its calendar date.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MondayOf returns midnight UTC of the Monday starting t's ISO week.
func MondayOf(t time.Time) time.Time {
	d := DayStart(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekKey identifies a calendar week by its Monday.
func WeekKey(monday time.Time) string {
	return monday.UTC().Format(time.RFC3339)
}

func clampWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		w = 1
	}
	return math.Min(maxClusterWeight, math.Max(minClusterWeight, w))
}

// prepareClusters copies the input, fills missing ids, drops duplicate ids and
// returns the clusters in planning order: weight desc, label asc, id asc. The
// ids of dropped clusters are returned in input order.
func prepareClusters(in []model.KeywordCluster, mode model.PlanMode) ([]model.KeywordCluster, []string) {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.KeywordCluster, 0, len(in))
	var dropped []string
	for _, c := range in {
		if c.ID == "" {
			c.ID = strings.ToLower(strings.TrimSpace(c.PrimaryKeyword))
		}
		if _, dup := seen[c.ID]; dup {
			dropped = append(dropped, c.ID)
			continue
		}
		seen[c.ID] = struct{}{}

		if c.Label == "" {
			c.Label = c.PrimaryKeyword
		}
		if mode == model.PlanModeBootstrap {
			c.Weight = 1
		} else {
			c.Weight = clampWeight(c.Weight)
		}
		c.SecondaryKeywords = append([]string(nil), c.SecondaryKeywords...)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return clusterLess(out[i], out[j])
	})
	return out, dropped
}

func clusterLess(a, b model.KeywordCluster) bool {
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.ID < b.ID
}

func truncateKeywords(keywords []string) []string {
	n := len(keywords)
	if n > MaxSecondaryKeywords {
		n = MaxSecondaryKeywords
	}
	out := make([]string, n)
	copy(out, keywords[:n])
	return out
}

func keywordKey(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}

func absDays(a, b time.Time) int {
	d := int(DayStart(a).Sub(DayStart(b)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
