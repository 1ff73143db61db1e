package service

import (
	"strings"
	"time"

	"homecare/internal/model"
)

// SearchOptions control search scoping.
type SearchOptions struct {
	// InAllHomes lifts the active-home pre-filter on task and item
	// results. Home results are never scoped.
	InAllHomes bool
}

// SearchSnapshot is the read-only view Search operates on.
type SearchSnapshot struct {
	Tasks        []model.Task
	Items        []model.HomeItem
	Homes        []model.Home
	ActiveHomeID string
}

// SearchResults groups matches per entity kind, each in the underlying
// collection's insertion order.
type SearchResults struct {
	Tasks []model.Task
	Items []model.HomeItem
	Homes []model.Home
}

const dueDateFormat = "Jan 2, 2006"

// Search filters tasks, items and homes by case-insensitive substring
// match against a fixed per-entity field set. An empty or whitespace-only
// query matches nothing.
func Search(query string, opts SearchOptions, snap SearchSnapshot) SearchResults {
	results := SearchResults{
		Tasks: []model.Task{},
		Items: []model.HomeItem{},
		Homes: []model.Home{},
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return results
	}

	scope := ""
	if !opts.InAllHomes {
		scope = resolveActiveHome(snap.ActiveHomeID, snap.Homes)
	}

	for _, task := range snap.Tasks {
		if scope != "" && task.HomeID != scope {
			continue
		}
		if matchesAny(q, task.Name, string(task.Frequency), task.Room, formatDueDate(task.DueDate)) {
			results.Tasks = append(results.Tasks, task)
		}
	}

	for _, item := range snap.Items {
		if scope != "" && item.HomeID != scope {
			continue
		}
		if matchesAny(q, item.Name, item.Model, item.SerialNumber, item.Room, item.Notes) {
			results.Items = append(results.Items, item)
		}
	}

	for _, home := range snap.Homes {
		if matchesAny(q, home.Name) {
			results.Homes = append(results.Homes, home)
		}
	}

	return results
}

func matchesAny(q string, fields ...string) bool {
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func formatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(dueDateFormat)
}
