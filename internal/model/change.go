package model

import "time"

// ChangeEntity names the entity kind a change record refers to.
type ChangeEntity string

const (
	ChangeEntityTask ChangeEntity = "task"
	ChangeEntityItem ChangeEntity = "item"
)

// ChangeAction names the mutation captured by a change record.
type ChangeAction string

const (
	ChangeActionCreate         ChangeAction = "create"
	ChangeActionUpdate         ChangeAction = "update"
	ChangeActionDelete         ChangeAction = "delete"
	ChangeActionToggleComplete ChangeAction = "toggleComplete"
)

// ChangeRecord is an immutable log entry describing one mutation. The
// pending-sync queue is an ordered sequence of these, kept for a future
// remote sync step that is not part of this scope.
type ChangeRecord struct {
	ID        string         `json:"id"`
	Entity    ChangeEntity   `json:"entity"`
	Action    ChangeAction   `json:"action"`
	EntityID  string         `json:"entityId"`
	HomeID    string         `json:"homeId"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
