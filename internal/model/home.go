package model

import "time"

// Home is a household namespace. Every Task and HomeItem belongs to
// exactly one Home via HomeID.
type Home struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Snapshot is the single persisted unit, written as one record after
// every mutation.
type Snapshot struct {
	Homes        []Home         `json:"homes"`
	ActiveHomeID string         `json:"activeHomeId"`
	Tasks        []Task         `json:"tasks"`
	Items        []HomeItem     `json:"items"`
	Region       string         `json:"region"`
	Theme        string         `json:"theme"`
	PendingSync  []ChangeRecord `json:"pendingSync,omitempty"`
}
