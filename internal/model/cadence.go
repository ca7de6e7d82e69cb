package model

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
)

// Cadence describes how often and on which ISO weekdays (Monday=1) content is
// published.
type Cadence struct {
	Frequency  Frequency `json:"frequency" yaml:"frequency"`
	DaysOfWeek []int     `json:"days_of_week" yaml:"days_of_week"`
}

// StepWeeks is the number of weeks between visited calendar weeks.
func (c Cadence) StepWeeks() int {
	if c.Frequency == FrequencyBiweekly {
		return 2
	}
	return 1
}
