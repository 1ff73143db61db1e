package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"homecare/internal/model"
)

// memoryGateway is an in-memory SnapshotGateway for store tests.
type memoryGateway struct {
	mu    sync.Mutex
	snap  *model.Snapshot
	saves int
}

func (g *memoryGateway) Load(ctx context.Context) (*model.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snap == nil {
		return nil, nil
	}
	dup := *g.snap
	return &dup, nil
}

func (g *memoryGateway) Save(ctx context.Context, snap model.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snap = &snap
	g.saves++
	return nil
}

func (g *memoryGateway) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snap = nil
	return nil
}

func (g *memoryGateway) latest() *model.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snap
}

func newHydratedStore(t *testing.T, gw *memoryGateway) *HomeStore {
	t.Helper()
	store := NewHomeStore(gw)
	t.Cleanup(store.Close)
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	return store
}

func TestHomeStore_HydrateSeedsFirstRun(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	if !store.IsHydrated() {
		t.Fatal("IsHydrated = false after Hydrate")
	}
	if homes := store.Homes(); len(homes) != 1 || homes[0].ID != model.DefaultHomeID {
		t.Fatalf("homes = %#v, want single default home", homes)
	}
	if tasks := store.Tasks(); len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3 demo tasks", len(tasks))
	}
	if items := store.Items(); len(items) != 3 {
		t.Fatalf("items = %d, want 3 demo items", len(items))
	}

	added := store.AddTask(model.Task{Name: "Test", Frequency: model.FrequencyMonthly})
	if added.HomeID != model.DefaultHomeID {
		t.Errorf("new task homeID = %q, want default home", added.HomeID)
	}
	if tasks := store.Tasks(); len(tasks) != 4 {
		t.Fatalf("tasks = %d after AddTask, want 4", len(tasks))
	}
	pending := store.PendingSync()
	if len(pending) != 1 {
		t.Fatalf("pendingSync = %d records, want 1", len(pending))
	}
	if pending[0].Entity != model.ChangeEntityTask || pending[0].Action != model.ChangeActionCreate {
		t.Errorf("pending record = %s/%s, want task/create", pending[0].Entity, pending[0].Action)
	}
}

func TestHomeStore_HydrateNormalizesStoredState(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	gw := &memoryGateway{snap: &model.Snapshot{
		ActiveHomeID: "missing-home",
		Tasks:        []model.Task{{ID: "t1", Name: "Orphan"}},
		Items:        []model.HomeItem{{ID: "i1", Name: "Orphan item", HomeID: "gone"}},
		PendingSync: []model.ChangeRecord{
			{ID: "c1", Entity: model.ChangeEntityTask, Action: model.ChangeActionCreate, EntityID: "t1", Timestamp: base},
			{ID: "c2", Entity: model.ChangeEntityTask, Action: model.ChangeActionUpdate, EntityID: "t1", Timestamp: base.Add(time.Minute)},
		},
	}}
	store := newHydratedStore(t, gw)

	homes := store.Homes()
	if len(homes) != 1 || homes[0].ID != model.DefaultHomeID {
		t.Fatalf("homes = %#v, want synthesized default", homes)
	}
	if store.ActiveHomeID() != model.DefaultHomeID {
		t.Fatalf("activeHomeID = %q, want default", store.ActiveHomeID())
	}
	for _, task := range store.Tasks() {
		if task.HomeID != model.DefaultHomeID {
			t.Errorf("task %s homeID = %q, want default", task.ID, task.HomeID)
		}
	}
	for _, item := range store.Items() {
		if item.HomeID != model.DefaultHomeID {
			t.Errorf("item %s homeID = %q, want default", item.ID, item.HomeID)
		}
	}

	pending := store.PendingSync()
	if len(pending) != 1 || pending[0].ID != "c2" {
		t.Fatalf("pendingSync = %#v, want only the later record c2", pending)
	}
	if store.Region() != model.DefaultRegion || store.Theme() != model.ThemeLight {
		t.Errorf("settings = %q/%q, want defaults", store.Region(), store.Theme())
	}
}

func TestHomeStore_ToggleRecurrence(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	originalDue := time.Now().AddDate(0, 0, 3)
	monthly := store.AddTask(model.Task{Name: "Monthly task", Frequency: model.FrequencyMonthly, DueDate: &originalDue})

	before := time.Now()
	store.ToggleTaskCompleted(monthly.ID)
	after := time.Now()

	got := findTask(t, store, monthly.ID)
	if got.IsCompleted {
		t.Error("monthly task completed on toggle, want recurred forward")
	}
	if got.LastCompletedDate == nil || got.LastCompletedDate.Before(before) || got.LastCompletedDate.After(after) {
		t.Errorf("lastCompletedDate = %v, want within toggle window", got.LastCompletedDate)
	}
	wantMin := before.AddDate(0, 1, 0)
	wantMax := after.AddDate(0, 1, 0)
	if got.DueDate == nil || got.DueDate.Before(wantMin) || got.DueDate.After(wantMax) {
		t.Errorf("dueDate = %v, want about one month out", got.DueDate)
	}

	pending := store.PendingSync()
	last := pending[len(pending)-1]
	if last.Action != model.ChangeActionToggleComplete {
		t.Errorf("last record action = %s, want toggleComplete", last.Action)
	}
}

func TestHomeStore_ToggleUnmappedFrequencyCompletes(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	due := time.Now().AddDate(0, 0, 2)
	weekly := store.AddTask(model.Task{Name: "Weekly task", Frequency: model.FrequencyWeekly, DueDate: &due})

	store.ToggleTaskCompleted(weekly.ID)

	got := findTask(t, store, weekly.ID)
	if !got.IsCompleted {
		t.Error("weekly task not completed on toggle")
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("dueDate = %v, want unchanged %v", got.DueDate, due)
	}
	if got.LastCompletedDate == nil {
		t.Error("lastCompletedDate not set")
	}

	// Toggling a completed task reopens it.
	store.ToggleTaskCompleted(weekly.ID)
	got = findTask(t, store, weekly.ID)
	if got.IsCompleted {
		t.Error("task still completed after reopen toggle")
	}
	if got.LastCompletedDate != nil {
		t.Errorf("lastCompletedDate = %v after reopen, want cleared", got.LastCompletedDate)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("dueDate = %v after reopen, want unchanged %v", got.DueDate, due)
	}
}

func TestHomeStore_ToggleUnknownIDIsNoop(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	tasksBefore := store.Tasks()
	pendingBefore := len(store.PendingSync())
	store.ToggleTaskCompleted("no-such-task")

	if len(store.Tasks()) != len(tasksBefore) {
		t.Fatal("unknown toggle changed tasks")
	}
	if len(store.PendingSync()) != pendingBefore {
		t.Fatal("unknown toggle appended change record")
	}
}

func TestHomeStore_UpdateAndRemoveTask(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	task := store.AddTask(model.Task{Name: "Fix fence", Frequency: model.FrequencyOneTime, Room: "Yard"})

	store.UpdateTask(task.ID, func(t *model.Task) {
		t.Name = "Fix back fence"
	})
	got := findTask(t, store, task.ID)
	if got.Name != "Fix back fence" {
		t.Errorf("name = %q after update", got.Name)
	}
	if got.Room != "Yard" {
		t.Errorf("update clobbered room: %q", got.Room)
	}

	pending := store.PendingSync()
	last := pending[len(pending)-1]
	if last.Action != model.ChangeActionUpdate || last.Payload["name"] != "Fix back fence" {
		t.Errorf("update record = %#v, want merged payload", last)
	}

	store.RemoveTask(task.ID)
	for _, remaining := range store.Tasks() {
		if remaining.ID == task.ID {
			t.Fatal("task still present after RemoveTask")
		}
	}
	pending = store.PendingSync()
	if pending[len(pending)-1].Action != model.ChangeActionDelete {
		t.Errorf("last record = %s, want delete", pending[len(pending)-1].Action)
	}

	// Removing again is a silent no-op.
	before := len(store.PendingSync())
	store.RemoveTask(task.ID)
	if len(store.PendingSync()) != before {
		t.Fatal("repeat remove appended change record")
	}
}

func TestHomeStore_ItemLifecycle(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	item := store.AddItem(model.HomeItem{Name: "Dishwasher", Model: "Bosch 300"})
	if item.HomeID != model.DefaultHomeID {
		t.Errorf("item homeID = %q, want default", item.HomeID)
	}

	store.UpdateItem(item.ID, func(i *model.HomeItem) {
		i.Notes = "Hums on startup"
	})
	var got *model.HomeItem
	for _, candidate := range store.Items() {
		if candidate.ID == item.ID {
			c := candidate
			got = &c
		}
	}
	if got == nil || got.Notes != "Hums on startup" {
		t.Fatalf("item after update = %#v", got)
	}

	store.RemoveItem(item.ID)
	if len(store.Items()) != 3 {
		t.Fatalf("items = %d after remove, want 3 demo items", len(store.Items()))
	}

	pending := store.PendingSync()
	if pending[len(pending)-1].Entity != model.ChangeEntityItem {
		t.Errorf("last record entity = %s, want item", pending[len(pending)-1].Entity)
	}
}

func TestHomeStore_HomeManagement(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	cabin := store.CreateHome("Lake Cabin")
	if store.ActiveHomeID() != cabin.ID {
		t.Fatalf("activeHomeID = %q, want new home", store.ActiveHomeID())
	}

	store.SetActiveHome("not-a-home")
	if store.ActiveHomeID() != cabin.ID {
		t.Fatal("unknown SetActiveHome changed the active home")
	}

	store.SetActiveHome(model.DefaultHomeID)
	if store.ActiveHomeID() != model.DefaultHomeID {
		t.Fatal("SetActiveHome did not switch back")
	}

	store.RenameHome(cabin.ID, "Mountain Cabin")
	for _, home := range store.Homes() {
		if home.ID == cabin.ID {
			if home.Name != "Mountain Cabin" {
				t.Errorf("name = %q after rename", home.Name)
			}
			if home.UpdatedAt == nil {
				t.Error("updatedAt not set on rename")
			}
		}
	}
}

func TestHomeStore_TasksStayScopedAfterMutations(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	store.CreateHome("Second")
	store.AddTask(model.Task{Name: "Scoped", Frequency: model.FrequencyCustom})
	store.BulkAddRecommendedTasks()
	store.AddSeasonalChecklists()

	valid := make(map[string]bool)
	for _, home := range store.Homes() {
		valid[home.ID] = true
	}
	for _, task := range store.Tasks() {
		if !valid[task.HomeID] {
			t.Errorf("task %q homeID = %q does not reference an existing home", task.Name, task.HomeID)
		}
	}
}

func TestHomeStore_BulkAddRecommendedTasksIdempotent(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	first := store.BulkAddRecommendedTasks()
	if first != 12 {
		t.Fatalf("first bulk add = %d, want 12", first)
	}
	if second := store.BulkAddRecommendedTasks(); second != 0 {
		t.Fatalf("second bulk add = %d, want 0", second)
	}
}

func TestHomeStore_BulkAddSkipsExistingCaseInsensitive(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	store.AddTask(model.Task{Name: "FURNACE FILTER", Frequency: model.FrequencyCustom})
	if got := store.BulkAddRecommendedTasks(); got != 11 {
		t.Fatalf("bulk add = %d, want 11 with one name already present", got)
	}
}

func TestHomeStore_AddSeasonalChecklists(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)
	store.SetRegion("Canada")

	added := store.AddSeasonalChecklists()
	if added != 9 {
		t.Fatalf("seasonal add = %d, want 9", added)
	}

	var summer *model.Task
	for _, task := range store.Tasks() {
		if task.Name == "Summer checklist: Rinse AC condenser fins" {
			c := task
			summer = &c
		}
	}
	if summer == nil {
		t.Fatal("expected seasonal task not found")
	}
	if summer.Frequency != model.FrequencyYearly {
		t.Errorf("seasonal frequency = %q, want Yearly", summer.Frequency)
	}
	if summer.SeasonalTag != "Summer - Canada" {
		t.Errorf("seasonalTag = %q, want Summer - Canada", summer.SeasonalTag)
	}

	if again := store.AddSeasonalChecklists(); again != 0 {
		t.Fatalf("second seasonal add = %d, want 0", again)
	}
}

func TestHomeStore_ResetDemoData(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	store.CreateHome("Extra")
	store.AddTask(model.Task{Name: "Extra task", Frequency: model.FrequencyCustom})
	store.SetRegion("Canada")
	store.ToggleTheme()

	if err := store.ResetDemoData(context.Background()); err != nil {
		t.Fatalf("ResetDemoData: %v", err)
	}

	if homes := store.Homes(); len(homes) != 1 || homes[0].ID != model.DefaultHomeID {
		t.Fatalf("homes after reset = %#v", homes)
	}
	if len(store.Tasks()) != 3 || len(store.Items()) != 3 {
		t.Fatalf("collections after reset = %d tasks, %d items", len(store.Tasks()), len(store.Items()))
	}
	if len(store.PendingSync()) != 0 {
		t.Fatal("pendingSync not cleared by reset")
	}
	if store.Region() != model.DefaultRegion || store.Theme() != model.ThemeLight {
		t.Errorf("settings after reset = %q/%q", store.Region(), store.Theme())
	}
	if !store.IsHydrated() {
		t.Error("store no longer hydrated after reset")
	}
}

func TestHomeStore_SettingsToggles(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	if store.NotificationsEnabled() {
		t.Fatal("notifications enabled by default")
	}
	store.ToggleNotifications()
	if !store.NotificationsEnabled() {
		t.Fatal("ToggleNotifications did not enable")
	}

	store.ToggleTheme()
	if store.Theme() != model.ThemeDark {
		t.Fatalf("theme = %q after toggle, want dark", store.Theme())
	}
	store.ToggleTheme()
	if store.Theme() != model.ThemeLight {
		t.Fatalf("theme = %q after second toggle, want light", store.Theme())
	}
}

func TestHomeStore_PrepareForCloudSync(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	task := store.AddTask(model.Task{Name: "Sync me", Frequency: model.FrequencyCustom})
	store.UpdateTask(task.ID, func(t *model.Task) { t.Room = "Attic" })

	batch := store.PrepareForCloudSync()
	if batch.HomeID != model.DefaultHomeID {
		t.Errorf("batch homeID = %q", batch.HomeID)
	}
	// Create and update for the same task collapse to the later record.
	if len(batch.PendingSync) != 1 {
		t.Fatalf("batch pendingSync = %d records, want 1 after dedup", len(batch.PendingSync))
	}
	if batch.PendingSync[0].Action != model.ChangeActionUpdate {
		t.Errorf("surviving action = %s, want update", batch.PendingSync[0].Action)
	}

	store.ClearPendingSync()
	if len(store.PendingSync()) != 0 {
		t.Fatal("ClearPendingSync left records behind")
	}
}

func TestHomeStore_ObserversFireOnMutation(t *testing.T) {
	gw := &memoryGateway{}
	store := newHydratedStore(t, gw)

	fired := 0
	unsubscribe := store.Subscribe(func() { fired++ })

	store.AddTask(model.Task{Name: "Observe", Frequency: model.FrequencyCustom})
	if fired != 1 {
		t.Fatalf("observer fired %d times, want 1", fired)
	}

	unsubscribe()
	store.AddTask(model.Task{Name: "Observe again", Frequency: model.FrequencyCustom})
	if fired != 1 {
		t.Fatalf("observer fired after unsubscribe")
	}
}

func TestHomeStore_ClosePersistsLatestState(t *testing.T) {
	gw := &memoryGateway{}
	store := NewHomeStore(gw)
	if err := store.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}

	for i := 0; i < 10; i++ {
		store.AddTask(model.Task{Name: "Task " + strings.Repeat("x", i+1), Frequency: model.FrequencyCustom})
	}
	store.Close()

	snap := gw.latest()
	if snap == nil {
		t.Fatal("no snapshot persisted")
	}
	if len(snap.Tasks) != 13 {
		t.Fatalf("persisted tasks = %d, want 13", len(snap.Tasks))
	}
	if snap.ActiveHomeID != model.DefaultHomeID {
		t.Fatalf("persisted activeHomeID = %q", snap.ActiveHomeID)
	}
}

func findTask(t *testing.T, store *HomeStore, id string) model.Task {
	t.Helper()
	for _, task := range store.Tasks() {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %s not found", id)
	return model.Task{}
}
