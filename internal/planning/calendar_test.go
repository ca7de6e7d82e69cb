package planning_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/cadence/internal/model"
	"basegraph.app/cadence/internal/planning"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func slotDates(cal planning.Calendar) []time.Time {
	dates := make([]time.Time, len(cal.Slots))
	for i, s := range cal.Slots {
		dates[i] = s.Date
	}
	return dates
}

var _ = Describe("BuildCalendar", func() {
	monday := date(2025, time.January, 6)
	weekly := model.Cadence{Frequency: model.FrequencyWeekly, DaysOfWeek: []int{2, 4}}
	blogOnly := []model.Channel{model.ChannelBlog}

	It("emits one slot per configured weekday across the horizon", func() {
		cal := planning.BuildCalendar(monday, 2, weekly, blogOnly, model.PlanModeRefresh)

		Expect(slotDates(cal)).To(Equal([]time.Time{
			date(2025, time.January, 7),
			date(2025, time.January, 9),
			date(2025, time.January, 14),
			date(2025, time.January, 16),
		}))
		Expect(cal.Weeks).To(Equal([]time.Time{monday, date(2025, time.January, 13)}))
		Expect(cal.Slots[0].WeekKey).To(Equal("2025-01-06T00:00:00Z"))
	})

	It("discards dates before a mid-week start date", func() {
		cal := planning.BuildCalendar(date(2025, time.January, 8), 2, weekly, blogOnly, model.PlanModeRefresh)

		Expect(slotDates(cal)).To(Equal([]time.Time{
			date(2025, time.January, 9),
			date(2025, time.January, 14),
			date(2025, time.January, 16),
		}))
	})

	It("visits every other week for a biweekly cadence", func() {
		biweekly := model.Cadence{Frequency: model.FrequencyBiweekly, DaysOfWeek: []int{2, 4}}
		cal := planning.BuildCalendar(monday, 4, biweekly, blogOnly, model.PlanModeRefresh)

		Expect(slotDates(cal)).To(Equal([]time.Time{
			date(2025, time.January, 7),
			date(2025, time.January, 9),
			date(2025, time.January, 21),
			date(2025, time.January, 23),
		}))
	})

	It("materializes the newsletter once per week in bootstrap mode", func() {
		cadence := model.Cadence{Frequency: model.FrequencyWeekly, DaysOfWeek: []int{1, 3, 5}}
		channels := []model.Channel{model.ChannelBlog, model.ChannelNewsletter}
		cal := planning.BuildCalendar(monday, 1, cadence, channels, model.PlanModeBootstrap)

		Expect(cal.Slots).To(HaveLen(4))
		newsletters := 0
		for _, s := range cal.Slots {
			if s.Channel == model.ChannelNewsletter {
				newsletters++
				Expect(s.Date).To(Equal(monday))
			}
		}
		Expect(newsletters).To(Equal(1))
	})

	It("leaves newsletter slots out in refresh mode", func() {
		channels := []model.Channel{model.ChannelBlog, model.ChannelNewsletter}
		cal := planning.BuildCalendar(monday, 1, weekly, channels, model.PlanModeRefresh)

		Expect(cal.Slots).To(HaveLen(2))
		for _, s := range cal.Slots {
			Expect(s.Channel).To(Equal(model.ChannelBlog))
		}
		Expect(cal.Weeks).To(HaveLen(1))
	})

	It("never produces duplicate (date, channel) pairs", func() {
		cadence := model.Cadence{Frequency: model.FrequencyWeekly, DaysOfWeek: []int{1, 2, 3, 4, 5, 6, 7}}
		cal := planning.BuildCalendar(date(2025, time.January, 9), 6, cadence, model.ChannelPriority, model.PlanModeBootstrap)

		seen := map[string]bool{}
		for _, s := range cal.Slots {
			key := s.Date.Format(time.DateOnly) + "/" + string(s.Channel)
			Expect(seen).NotTo(HaveKey(key))
			seen[key] = true
		}
	})
})

var _ = Describe("normalization", func() {
	It("filters, deduplicates and sorts weekdays", func() {
		c := planning.NormalizeCadence(model.Cadence{Frequency: "BiWeekly", DaysOfWeek: []int{9, 4, 4, 0, 2}})
		Expect(c.Frequency).To(Equal(model.FrequencyBiweekly))
		Expect(c.DaysOfWeek).To(Equal([]int{2, 4}))
	})

	It("defaults to Tuesday and Thursday when no weekday is valid", func() {
		c := planning.NormalizeCadence(model.Cadence{Frequency: "daily", DaysOfWeek: []int{8}})
		Expect(c.Frequency).To(Equal(model.FrequencyWeekly))
		Expect(c.DaysOfWeek).To(Equal([]int{2, 4}))
	})

	It("keeps known channels in priority order", func() {
		Expect(planning.NormalizeChannels([]string{"Newsletter", "tiktok", " blog ", "blog"})).
			To(Equal([]model.Channel{model.ChannelBlog, model.ChannelNewsletter}))
		Expect(planning.NormalizeChannels([]string{"fax"})).To(Equal([]model.Channel{model.ChannelBlog}))
	})

	It("bounds the horizon", func() {
		Expect(planning.NormalizeHorizon(0)).To(Equal(planning.DefaultHorizonWeeks))
		Expect(planning.NormalizeHorizon(3)).To(Equal(3))
		Expect(planning.NormalizeHorizon(500)).To(Equal(planning.MaxHorizonWeeks))
	})

	It("parses start dates and falls back to now", func() {
		now := time.Date(2025, time.March, 3, 15, 4, 5, 0, time.UTC)
		Expect(planning.ParseStartDate("2025-02-10", now)).To(Equal(date(2025, time.February, 10)))
		Expect(planning.ParseStartDate("2025-02-10T22:30:00Z", now)).To(Equal(date(2025, time.February, 10)))
		Expect(planning.ParseStartDate("next tuesday", now)).To(Equal(date(2025, time.March, 3)))
	})

	It("keeps the calendar date written in a timestamp's own offset", func() {
		now := time.Date(2025, time.March, 3, 15, 4, 5, 0, time.UTC)
		Expect(planning.ParseStartDate("2025-01-06T23:00:00-05:00", now)).To(Equal(date(2025, time.January, 6)))
		Expect(planning.ParseStartDate("2025-01-07T01:00:00+09:00", now)).To(Equal(date(2025, time.January, 7)))
	})

	It("finds the Monday of any day", func() {
		Expect(planning.MondayOf(date(2025, time.January, 12))).To(Equal(date(2025, time.January, 6)))
		Expect(planning.MondayOf(date(2025, time.January, 6))).To(Equal(date(2025, time.January, 6)))
	})
})
