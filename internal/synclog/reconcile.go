package synclog

import (
	"homecare/internal/model"
)

// Result holds the outcome of one reconciliation pass.
type Result struct {
	Tasks       []model.Task
	Items       []model.HomeItem
	PendingSync []model.ChangeRecord
}

// Reconcile normalizes the store's collections at a state-loading
// boundary: every task and item ends up scoped to an existing home
// (falling back to the active home, the first home, or the default home
// id) and the pending queue is deduplicated into canonical ascending
// timestamp order. The pass is idempotent.
func Reconcile(tasks []model.Task, items []model.HomeItem, homes []model.Home, activeHomeID string, pending []model.ChangeRecord) Result {
	valid := make(map[string]bool, len(homes))
	for _, home := range homes {
		valid[home.ID] = true
	}

	fallback := activeHomeID
	if !valid[fallback] {
		if len(homes) > 0 {
			fallback = homes[0].ID
		} else {
			fallback = model.DefaultHomeID
		}
	}

	normTasks := make([]model.Task, len(tasks))
	for i, task := range tasks {
		if !valid[task.HomeID] {
			task.HomeID = fallback
		}
		normTasks[i] = task
	}

	normItems := make([]model.HomeItem, len(items))
	for i, item := range items {
		if !valid[item.HomeID] {
			item.HomeID = fallback
		}
		normItems[i] = item
	}

	return Result{Tasks: normTasks, Items: normItems, PendingSync: Dedupe(pending)}
}
