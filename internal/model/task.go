package model

import "time"

// Frequency describes how often a task recurs. The constants below form
// the closed set the recurrence mapping understands; arbitrary strings
// are accepted for custom and seasonal labels and never recur
// automatically.
type Frequency string

const (
	FrequencyOneTime    Frequency = "One-time"
	FrequencyWeekly     Frequency = "Weekly"
	FrequencyMonthly    Frequency = "Monthly"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencySemiannual Frequency = "Every 6 Months"
	FrequencyYearly     Frequency = "Yearly"
	FrequencyCustom     Frequency = "Custom"
)

// NextDue returns the due date a completed task rolls forward to, or nil
// when the frequency does not recur automatically.
func (f Frequency) NextDue(now time.Time) *time.Time {
	var next time.Time
	switch f {
	case FrequencyMonthly:
		next = now.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		next = now.AddDate(0, 3, 0)
	case FrequencySemiannual:
		next = now.AddDate(0, 6, 0)
	default:
		return nil
	}
	return &next
}

// Task represents a recurring or one-time maintenance action.
type Task struct {
	ID                string     `json:"id"`
	HomeID            string     `json:"homeId"`
	Name              string     `json:"name"`
	Frequency         Frequency  `json:"frequency"`
	Room              string     `json:"room,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	LastCompletedDate *time.Time `json:"lastCompletedDate,omitempty"`
	IsCompleted       bool       `json:"isCompleted"`
	Photos            []string   `json:"photos,omitempty"`
	SeasonalTag       string     `json:"seasonalTag,omitempty"`
}
