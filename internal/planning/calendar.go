package planning

import (
	"time"

	"basegraph.app/cadence/internal/model"
)

// Slot is one (date, channel) publishing opportunity.
type Slot struct {
	Date    time.Time
	WeekKey string
	Channel model.Channel
}

// Calendar is the ordered slot list for a run plus the Mondays of every week
// that holds at least one cadence date on or after the start date.
type Calendar struct {
	Slots []Slot
	Weeks []time.Time
}

// BuildCalendar expands a normalized cadence and channel set into slots.
//
// Weeks are visited from the Monday of start's week, stepping one or two weeks
// at a time while the offset stays below horizonWeeks. Dates before start are
// discarded. In refresh mode newsletter slots are left out entirely because the
// newsletter is composed once per week afterwards; in bootstrap mode a single
// newsletter slot is materialized on the first publishing date of each week.
func BuildCalendar(start time.Time, horizonWeeks int, cadence model.Cadence, channels []model.Channel, mode model.PlanMode) Calendar {
	start = DayStart(start)
	firstMonday := MondayOf(start)
	step := cadence.StepWeeks()

	var cal Calendar
	for offset := 0; offset < horizonWeeks; offset += step {
		monday := firstMonday.AddDate(0, 0, 7*offset)
		dates := weekDates(monday, cadence.DaysOfWeek, start)
		if len(dates) == 0 {
			continue
		}
		cal.Weeks = append(cal.Weeks, monday)

		key := WeekKey(monday)
		newsletterCreated := false
		for _, date := range dates {
			for _, ch := range channels {
				if ch == model.ChannelNewsletter {
					if mode == model.PlanModeRefresh || newsletterCreated {
						continue
					}
					newsletterCreated = true
				}
				cal.Slots = append(cal.Slots, Slot{Date: date, WeekKey: key, Channel: ch})
			}
		}
	}
	return cal
}

// weekDates returns the concrete dates for days (ascending ISO weekdays) in the
// week starting at monday, skipping dates before notBefore.
func weekDates(monday time.Time, days []int, notBefore time.Time) []time.Time {
	dates := make([]time.Time, 0, len(days))
	for _, d := range days {
		date := monday.AddDate(0, 0, d-1)
		if date.Before(notBefore) {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}
