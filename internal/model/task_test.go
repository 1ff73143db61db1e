package model

import (
	"testing"
	"time"
)

func TestFrequency_NextDue(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency Frequency
		want      *time.Time
	}{
		{FrequencyMonthly, timePtr(now.AddDate(0, 1, 0))},
		{FrequencyQuarterly, timePtr(now.AddDate(0, 3, 0))},
		{FrequencySemiannual, timePtr(now.AddDate(0, 6, 0))},
		{FrequencyOneTime, nil},
		{FrequencyWeekly, nil},
		{FrequencyYearly, nil},
		{FrequencyCustom, nil},
		{Frequency("Spring special"), nil},
	}

	for _, tt := range tests {
		got := tt.frequency.NextDue(now)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("NextDue(%q) = %v, want nil", tt.frequency, got)
		case tt.want != nil && got == nil:
			t.Errorf("NextDue(%q) = nil, want %v", tt.frequency, tt.want)
		case tt.want != nil && !got.Equal(*tt.want):
			t.Errorf("NextDue(%q) = %v, want %v", tt.frequency, got, tt.want)
		}
	}
}

func TestDemoSeeds_ScopedToHome(t *testing.T) {
	now := time.Now()

	tasks := DemoTasks("home-x", now)
	if len(tasks) != 3 {
		t.Fatalf("DemoTasks returned %d tasks, want 3", len(tasks))
	}
	for _, task := range tasks {
		if task.HomeID != "home-x" {
			t.Errorf("task %s homeID = %q, want home-x", task.ID, task.HomeID)
		}
		if task.IsCompleted {
			t.Errorf("task %s seeded as completed", task.ID)
		}
		if task.DueDate == nil {
			t.Errorf("task %s has no due date", task.ID)
		}
	}

	items := DemoItems("home-x", now)
	if len(items) != 3 {
		t.Fatalf("DemoItems returned %d items, want 3", len(items))
	}
	for _, item := range items {
		if item.HomeID != "home-x" {
			t.Errorf("item %s homeID = %q, want home-x", item.ID, item.HomeID)
		}
	}
}

func TestNewID_UsesPrefix(t *testing.T) {
	id := NewID("task")
	if len(id) <= len("task-") || id[:5] != "task-" {
		t.Fatalf("NewID = %q, want task- prefix", id)
	}
	if NewID("task") == id {
		t.Fatal("NewID returned duplicate identifiers")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
