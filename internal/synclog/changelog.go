// Package synclog builds the append-only change log that records local
// mutations for a future remote sync step.
package synclog

import (
	"encoding/json"
	"sort"
	"time"

	"homecare/internal/model"
)

// NewChangeRecord builds one immutable log entry stamped with the current
// time.
func NewChangeRecord(entity model.ChangeEntity, action model.ChangeAction, entityID, homeID string, payload map[string]any) model.ChangeRecord {
	return model.ChangeRecord{
		ID:        model.NewID("change"),
		Entity:    entity,
		Action:    action,
		EntityID:  entityID,
		HomeID:    homeID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// TrackTaskChange appends a record for the given task to the log. A nil
// payload defaults to a full snapshot of the task.
func TrackTaskChange(log []model.ChangeRecord, action model.ChangeAction, task model.Task, payload map[string]any) []model.ChangeRecord {
	if payload == nil {
		payload = entityPayload(task)
	}
	return append(log, NewChangeRecord(model.ChangeEntityTask, action, task.ID, task.HomeID, payload))
}

// TrackItemChange appends a record for the given item to the log. A nil
// payload defaults to a full snapshot of the item.
func TrackItemChange(log []model.ChangeRecord, action model.ChangeAction, item model.HomeItem, payload map[string]any) []model.ChangeRecord {
	if payload == nil {
		payload = entityPayload(item)
	}
	return append(log, NewChangeRecord(model.ChangeEntityItem, action, item.ID, item.HomeID, payload))
}

// entityPayload flattens an entity into the generic payload shape carried
// on the wire, so replay sees the same field names as the snapshot.
func entityPayload(entity any) map[string]any {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}

// Dedupe keeps the chronologically latest record per (entity, entityID)
// pair and returns the survivors in ascending timestamp order. Applying
// it to its own output yields an identical result.
func Dedupe(records []model.ChangeRecord) []model.ChangeRecord {
	if len(records) == 0 {
		return nil
	}

	sorted := sortedByTimestamp(records)

	type identity struct {
		entity model.ChangeEntity
		id     string
	}
	latest := make(map[identity]int, len(sorted))
	for i, rec := range sorted {
		latest[identity{rec.Entity, rec.EntityID}] = i
	}

	out := make([]model.ChangeRecord, 0, len(latest))
	for i, rec := range sorted {
		if latest[identity{rec.Entity, rec.EntityID}] == i {
			out = append(out, rec)
		}
	}
	return out
}

// ApplyTaskChanges replays a log onto a base task collection: creates
// append, updates merge the payload, deletes filter. Records for other
// entities or unknown actions are skipped.
func ApplyTaskChanges(tasks []model.Task, records []model.ChangeRecord) []model.Task {
	out := append([]model.Task(nil), tasks...)
	for _, rec := range sortedByTimestamp(records) {
		if rec.Entity != model.ChangeEntityTask {
			continue
		}
		switch rec.Action {
		case model.ChangeActionCreate:
			if rec.Payload != nil {
				var task model.Task
				if decodePayload(rec.Payload, &task) {
					out = append(out, task)
				}
			}
		case model.ChangeActionUpdate, model.ChangeActionToggleComplete:
			for i := range out {
				if out[i].ID == rec.EntityID {
					decodePayload(rec.Payload, &out[i])
					out[i].ID = rec.EntityID
				}
			}
		case model.ChangeActionDelete:
			kept := out[:0]
			for _, task := range out {
				if task.ID != rec.EntityID {
					kept = append(kept, task)
				}
			}
			out = kept
		}
	}
	return out
}

// ApplyItemChanges replays a log onto a base item collection with the
// same semantics as ApplyTaskChanges.
func ApplyItemChanges(items []model.HomeItem, records []model.ChangeRecord) []model.HomeItem {
	out := append([]model.HomeItem(nil), items...)
	for _, rec := range sortedByTimestamp(records) {
		if rec.Entity != model.ChangeEntityItem {
			continue
		}
		switch rec.Action {
		case model.ChangeActionCreate:
			if rec.Payload != nil {
				var item model.HomeItem
				if decodePayload(rec.Payload, &item) {
					out = append(out, item)
				}
			}
		case model.ChangeActionUpdate:
			for i := range out {
				if out[i].ID == rec.EntityID {
					decodePayload(rec.Payload, &out[i])
					out[i].ID = rec.EntityID
				}
			}
		case model.ChangeActionDelete:
			kept := out[:0]
			for _, item := range out {
				if item.ID != rec.EntityID {
					kept = append(kept, item)
				}
			}
			out = kept
		}
	}
	return out
}

func sortedByTimestamp(records []model.ChangeRecord) []model.ChangeRecord {
	sorted := append([]model.ChangeRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// decodePayload merges the payload's fields into dst, leaving fields the
// payload does not mention untouched.
func decodePayload(payload map[string]any, dst any) bool {
	if payload == nil {
		return false
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
