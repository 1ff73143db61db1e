package service

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"homecare/internal/model"
)

const upcomingWindow = 7 * 24 * time.Hour

// ReminderService builds human-readable summaries from the store for the
// notification channel.
type ReminderService struct {
	store *HomeStore
}

func NewReminderService(store *HomeStore) *ReminderService {
	return &ReminderService{store: store}
}

// WeeklySummary counts overdue and due-within-7-days incomplete tasks.
type WeeklySummary struct {
	Overdue  int
	Upcoming int
	Body     string
}

// BuildWeeklySummary renders the recurring weekly notification text.
func (s *ReminderService) BuildWeeklySummary(now time.Time) WeeklySummary {
	var summary WeeklySummary
	for _, task := range s.store.Tasks() {
		if task.DueDate == nil || task.IsCompleted {
			continue
		}
		switch {
		case task.DueDate.Before(now):
			summary.Overdue++
		case task.DueDate.Before(now.Add(upcomingWindow)):
			summary.Upcoming++
		}
	}

	var parts []string
	if summary.Overdue > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue", summary.Overdue))
	}
	if summary.Upcoming > 0 {
		parts = append(parts, fmt.Sprintf("%d due soon", summary.Upcoming))
	}
	body := "You are all caught up!"
	if len(parts) > 0 {
		body = strings.Join(parts, " • ")
	}
	summary.Body = "<b>Weekly home care summary</b>\n" + body
	return summary
}

// DueSoon lists incomplete tasks that are overdue or due within 48 hours,
// nearest due date first.
func (s *ReminderService) DueSoon(now time.Time) []model.Task {
	var due []model.Task
	for _, task := range s.store.Tasks() {
		if task.DueDate == nil || task.IsCompleted {
			continue
		}
		if task.DueDate.Before(now.Add(48 * time.Hour)) {
			due = append(due, task)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueDate.Before(*due[j].DueDate)
	})
	return due
}

// BuildTaskList renders the active home's open tasks as an HTML message.
func (s *ReminderService) BuildTaskList(now time.Time) string {
	active := s.store.ActiveHomeID()

	var builder strings.Builder
	builder.WriteString("<b>Open tasks</b>\n")
	count := 0
	for _, task := range s.store.Tasks() {
		if task.IsCompleted || task.HomeID != active {
			continue
		}
		count++
		builder.WriteString(formatTaskLine(task, now))
	}
	if count == 0 {
		builder.WriteString("— no open tasks\n")
	}
	return strings.TrimSpace(builder.String())
}

func formatTaskLine(task model.Task, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(html.EscapeString(strings.TrimSpace(task.Name)))
	if task.Room != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(task.Room)))
	}
	if task.DueDate != nil {
		if task.DueDate.Before(now) {
			sb.WriteString(fmt.Sprintf(" — due %s, <b>overdue</b>", task.DueDate.Format("2006-01-02")))
		} else {
			sb.WriteString(fmt.Sprintf(" — due %s", task.DueDate.Format("2006-01-02")))
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// FormatReminder renders a single-task reminder message.
func FormatReminder(task model.Task, now time.Time) string {
	return strings.TrimSpace("<b>Task reminder</b>\n" + formatTaskLine(task, now))
}

// NextWeeklyTrigger returns the next Monday 09:00 in now's location, the
// anchor for the recurring weekly summary.
func NextWeeklyTrigger(now time.Time) time.Time {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, now.Location()).AddDate(0, 0, days)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
