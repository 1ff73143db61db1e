package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"homecare/internal/model"
	"homecare/internal/synclog"
)

// SnapshotGateway persists the serialized state snapshot.
type SnapshotGateway interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap model.Snapshot) error
	Clear(ctx context.Context) error
}

type storeState struct {
	homes                []model.Home
	activeHomeID         string
	tasks                []model.Task
	items                []model.HomeItem
	notificationsEnabled bool
	hydrated             bool
	region               string
	theme                string
	pendingSync          []model.ChangeRecord
}

// HomeStore is the single source of truth for all domain state. Every
// operation applies one atomic in-memory transition, queues a
// fire-and-forget persist of the snapshot, and notifies observers.
// Domain-level inconsistencies (unknown ids, empty collections) never
// surface as errors; the store self-heals instead.
type HomeStore struct {
	gateway SnapshotGateway
	persist *persister

	mu    sync.Mutex
	state storeState

	obsMu     sync.Mutex
	observers map[int]func()
	nextObs   int

	now func() time.Time
}

// NewHomeStore builds an empty, unhydrated store around the gateway.
func NewHomeStore(gateway SnapshotGateway) *HomeStore {
	return &HomeStore{
		gateway:   gateway,
		persist:   newPersister(gateway),
		observers: make(map[int]func()),
		now:       time.Now,
		state: storeState{
			region: model.DefaultRegion,
			theme:  model.ThemeLight,
		},
	}
}

// Close flushes the latest queued snapshot and stops the persist worker.
func (s *HomeStore) Close() {
	s.persist.Stop()
}

// Subscribe registers an observer invoked after every mutation. The
// returned function removes it.
func (s *HomeStore) Subscribe(fn func()) func() {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *HomeStore) notify() {
	s.obsMu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Hydrate loads persisted state, normalizing it through the
// reconciliation pass, or seeds first-run demo data when nothing has been
// saved. Callers are expected to invoke it once.
func (s *HomeStore) Hydrate(ctx context.Context) error {
	snap, err := s.gateway.Load(ctx)
	if err != nil {
		return fmt.Errorf("hydrate: %w", err)
	}

	now := s.now()
	s.mu.Lock()
	if snap != nil {
		homes := ensureHomePresence(snap.Homes, now)
		active := resolveActiveHome(snap.ActiveHomeID, homes)
		res := synclog.Reconcile(snap.Tasks, snap.Items, homes, active, snap.PendingSync)

		s.state.homes = homes
		s.state.activeHomeID = active
		s.state.tasks = res.Tasks
		s.state.items = res.Items
		s.state.pendingSync = res.PendingSync
		s.state.region = snap.Region
		if s.state.region == "" {
			s.state.region = model.DefaultRegion
		}
		s.state.theme = snap.Theme
		if s.state.theme == "" {
			s.state.theme = model.ThemeLight
		}
	} else {
		seed := model.DefaultHome(now)
		s.state.homes = []model.Home{seed}
		s.state.activeHomeID = seed.ID
		s.state.tasks = model.DemoTasks(seed.ID, now)
		s.state.items = model.DemoItems(seed.ID, now)
		s.state.region = model.DefaultRegion
		s.state.theme = model.ThemeLight
		s.state.pendingSync = nil
	}
	s.state.hydrated = true
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// CreateHome appends a new home, makes it active, and returns it.
func (s *HomeStore) CreateHome(name string) model.Home {
	home := model.Home{ID: model.NewID("home"), Name: name, CreatedAt: s.now()}

	s.mu.Lock()
	s.state.homes = append(s.state.homes, home)
	s.state.activeHomeID = home.ID
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return home
}

// SetActiveHome switches the active home and re-runs reconciliation.
// Unknown ids are a silent no-op.
func (s *HomeStore) SetActiveHome(homeID string) {
	s.mu.Lock()
	if !homeExists(s.state.homes, homeID) {
		s.mu.Unlock()
		return
	}
	s.state.activeHomeID = homeID
	res := synclog.Reconcile(s.state.tasks, s.state.items, s.state.homes, homeID, s.state.pendingSync)
	s.state.tasks = res.Tasks
	s.state.items = res.Items
	s.state.pendingSync = res.PendingSync
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// RenameHome updates the matching home's name in place. Unknown ids are
// a silent no-op.
func (s *HomeStore) RenameHome(homeID, name string) {
	now := s.now()

	s.mu.Lock()
	found := false
	for i := range s.state.homes {
		if s.state.homes[i].ID == homeID {
			s.state.homes[i].Name = name
			s.state.homes[i].UpdatedAt = &now
			found = true
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// AddTask appends a task, defaulting its id and home scope when unset,
// and records a create change.
func (s *HomeStore) AddTask(task model.Task) model.Task {
	s.mu.Lock()
	s.ensureActiveHomeLocked()
	if task.ID == "" {
		task.ID = model.NewID("task")
	}
	if task.HomeID == "" {
		task.HomeID = s.state.activeHomeID
	}
	s.state.tasks = append(s.state.tasks, task)
	s.state.pendingSync = synclog.TrackTaskChange(s.state.pendingSync, model.ChangeActionCreate, task, nil)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return task
}

// UpdateTask merges changes into the matching task by invoking apply on
// it, then records an update change carrying the merged result. Unknown
// ids are a silent no-op.
func (s *HomeStore) UpdateTask(id string, apply func(*model.Task)) {
	s.mu.Lock()
	idx := taskIndex(s.state.tasks, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	apply(&s.state.tasks[idx])
	s.state.tasks[idx].ID = id
	s.state.pendingSync = synclog.TrackTaskChange(s.state.pendingSync, model.ChangeActionUpdate, s.state.tasks[idx], nil)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// ToggleTaskCompleted flips a task's completion state. Completing a task
// whose frequency maps to a next cadence rolls the due date forward and
// leaves the task open; completing any other task closes it. Toggling a
// completed task reopens it and clears the completion date. Unknown ids
// are a silent no-op.
func (s *HomeStore) ToggleTaskCompleted(id string) {
	now := s.now()

	s.mu.Lock()
	idx := taskIndex(s.state.tasks, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	task := &s.state.tasks[idx]
	if !task.IsCompleted {
		if next := task.Frequency.NextDue(now); next != nil {
			task.DueDate = next
			task.IsCompleted = false
		} else {
			task.IsCompleted = true
		}
		task.LastCompletedDate = &now
	} else {
		task.IsCompleted = false
		task.LastCompletedDate = nil
	}

	payload := map[string]any{
		"isCompleted":       task.IsCompleted,
		"lastCompletedDate": task.LastCompletedDate,
		"dueDate":           task.DueDate,
	}
	s.state.pendingSync = synclog.TrackTaskChange(s.state.pendingSync, model.ChangeActionToggleComplete, *task, payload)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// RemoveTask deletes the matching task and records a delete change.
// Unknown ids are a silent no-op.
func (s *HomeStore) RemoveTask(id string) {
	s.mu.Lock()
	idx := taskIndex(s.state.tasks, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	removed := s.state.tasks[idx]
	s.state.tasks = append(s.state.tasks[:idx], s.state.tasks[idx+1:]...)
	s.state.pendingSync = synclog.TrackTaskChange(s.state.pendingSync, model.ChangeActionDelete, removed, nil)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// AddItem appends an item, defaulting its id and home scope when unset,
// and records a create change.
func (s *HomeStore) AddItem(item model.HomeItem) model.HomeItem {
	s.mu.Lock()
	s.ensureActiveHomeLocked()
	if item.ID == "" {
		item.ID = model.NewID("item")
	}
	if item.HomeID == "" {
		item.HomeID = s.state.activeHomeID
	}
	s.state.items = append(s.state.items, item)
	s.state.pendingSync = synclog.TrackItemChange(s.state.pendingSync, model.ChangeActionCreate, item, nil)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return item
}

// UpdateItem merges changes into the matching item, recording an update
// change with the merged result. Unknown ids are a silent no-op.
func (s *HomeStore) UpdateItem(id string, apply func(*model.HomeItem)) {
	s.mu.Lock()
	idx := itemIndex(s.state.items, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	apply(&s.state.items[idx])
	s.state.items[idx].ID = id
	s.state.pendingSync = synclog.TrackItemChange(s.state.pendingSync, model.ChangeActionUpdate, s.state.items[idx], nil)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// RemoveItem deletes the matching item and records a delete change.
// Unknown ids are a silent no-op.
func (s *HomeStore) RemoveItem(id string) {
	s.mu.Lock()
	idx := itemIndex(s.state.items, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	removed := s.state.items[idx]
	s.state.items = append(s.state.items[:idx], s.state.items[idx+1:]...)
	s.state.pendingSync = synclog.TrackItemChange(s.state.pendingSync, model.ChangeActionDelete, removed, nil)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// ResetDemoData clears persisted data, reseeds the default home plus demo
// tasks and items, and resets region, theme, and the pending queue.
func (s *HomeStore) ResetDemoData(ctx context.Context) error {
	if err := s.gateway.Clear(ctx); err != nil {
		return fmt.Errorf("reset demo data: %w", err)
	}

	now := s.now()
	s.mu.Lock()
	seed := model.DefaultHome(now)
	s.state = storeState{
		homes:                []model.Home{seed},
		activeHomeID:         seed.ID,
		tasks:                model.DemoTasks(seed.ID, now),
		items:                model.DemoItems(seed.ID, now),
		region:               model.DefaultRegion,
		theme:                model.ThemeLight,
		hydrated:             true,
		notificationsEnabled: s.state.notificationsEnabled,
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

// recommendedTasks is the curated bulk-seeding list.
var recommendedTasks = []string{
	"Furnace filter",
	"Gutter cleaning",
	"AC coil clean",
	"Smoke detector test",
	"Clean dishwasher filter",
	"Change fridge water filter",
	"Inspect dryer vent",
	"Flush water heater",
	"Test sump pump",
	"Clean range hood filter",
	"Check GFCI outlets",
	"Deep clean garbage disposal",
}

// BulkAddRecommendedTasks inserts the curated maintenance tasks that are
// not already present (case-insensitive name match), each Quarterly and
// staggered by insertion index in days. Returns the number inserted.
func (s *HomeStore) BulkAddRecommendedTasks() int {
	now := s.now()

	s.mu.Lock()
	s.ensureActiveHomeLocked()
	existing := existingNames(s.state.tasks)

	added := 0
	for _, name := range recommendedTasks {
		if existing[strings.ToLower(name)] {
			continue
		}
		due := now.AddDate(0, 0, added)
		task := model.Task{
			ID:        model.NewID("recommended"),
			HomeID:    s.state.activeHomeID,
			Name:      name,
			Frequency: model.FrequencyQuarterly,
			DueDate:   &due,
		}
		s.state.tasks = append(s.state.tasks, task)
		s.state.pendingSync = synclog.TrackTaskChange(s.state.pendingSync, model.ChangeActionCreate, task, nil)
		added++
	}
	if added == 0 {
		s.mu.Unlock()
		return 0
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return added
}

type seasonalTemplate struct {
	season string
	name   string
	tasks  []string
}

var seasonalTemplates = []seasonalTemplate{
	{
		season: "Summer",
		name:   "Summer checklist",
		tasks: []string{
			"Inspect HVAC condensate line",
			"Clean ceiling fan blades",
			"Rinse AC condenser fins",
		},
	},
	{
		season: "Fall",
		name:   "Fall prep",
		tasks:  []string{"Blow out sprinklers", "Reseal exterior gaps", "Inspect roof flashing"},
	},
	{
		season: "Winter",
		name:   "Winterizing checklist",
		tasks: []string{
			"Cover hose bibs",
			"Test carbon monoxide detectors",
			"Check attic insulation",
		},
	},
}

// AddSeasonalChecklists expands the seasonal templates into yearly tasks
// named "<Template>: <subtask>", tagged with season and current region,
// skipping names that already exist. Due dates stagger by
// seasonIndex*30 + subtaskIndex days. Returns the number inserted.
func (s *HomeStore) AddSeasonalChecklists() int {
	now := s.now()

	s.mu.Lock()
	s.ensureActiveHomeLocked()
	existing := existingNames(s.state.tasks)

	added := 0
	for seasonIdx, tpl := range seasonalTemplates {
		for idx, sub := range tpl.tasks {
			name := tpl.name + ": " + sub
			if existing[strings.ToLower(name)] {
				continue
			}
			due := now.AddDate(0, 0, seasonIdx*30+idx)
			task := model.Task{
				ID:          model.NewID("seasonal"),
				HomeID:      s.state.activeHomeID,
				Name:        name,
				Frequency:   model.FrequencyYearly,
				DueDate:     &due,
				SeasonalTag: tpl.season + " - " + s.state.region,
			}
			s.state.tasks = append(s.state.tasks, task)
			s.state.pendingSync = synclog.TrackTaskChange(s.state.pendingSync, model.ChangeActionCreate, task, nil)
			added++
		}
	}
	if added == 0 {
		s.mu.Unlock()
		return 0
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return added
}

// SetRegion updates the region used for seasonal tagging.
func (s *HomeStore) SetRegion(region string) {
	s.mu.Lock()
	s.state.region = region
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// ToggleNotifications flips the in-memory notification flag. The flag is
// deliberately not persisted; scheduling wiring reads it at runtime.
func (s *HomeStore) ToggleNotifications() {
	s.mu.Lock()
	s.state.notificationsEnabled = !s.state.notificationsEnabled
	s.mu.Unlock()

	s.notify()
}

// ToggleTheme switches between the light and dark themes.
func (s *HomeStore) ToggleTheme() {
	s.mu.Lock()
	if s.state.theme == model.ThemeLight {
		s.state.theme = model.ThemeDark
	} else {
		s.state.theme = model.ThemeLight
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// CloudSyncBatch is the normalized unit a future transport would push.
type CloudSyncBatch struct {
	HomeID      string
	Tasks       []model.Task
	Items       []model.HomeItem
	PendingSync []model.ChangeRecord
}

// PrepareForCloudSync runs reconciliation over the live state and returns
// the deduplicated queue alongside the normalized collections. No
// transport exists yet; this is the hand-off point for one.
func (s *HomeStore) PrepareForCloudSync() CloudSyncBatch {
	s.mu.Lock()
	s.ensureActiveHomeLocked()
	res := synclog.Reconcile(s.state.tasks, s.state.items, s.state.homes, s.state.activeHomeID, s.state.pendingSync)
	s.state.tasks = res.Tasks
	s.state.items = res.Items
	s.state.pendingSync = res.PendingSync
	batch := CloudSyncBatch{
		HomeID:      s.state.activeHomeID,
		Tasks:       cloneTasks(res.Tasks),
		Items:       cloneItems(res.Items),
		PendingSync: cloneChanges(res.PendingSync),
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return batch
}

// ClearPendingSync empties the pending queue, as a transport would after
// a successful push.
func (s *HomeStore) ClearPendingSync() {
	s.mu.Lock()
	s.state.pendingSync = nil
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Reads. All return defensive copies.

func (s *HomeStore) Homes() []model.Home {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneHomes(s.state.homes)
}

func (s *HomeStore) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.state.tasks)
}

func (s *HomeStore) Items() []model.HomeItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.state.items)
}

func (s *HomeStore) PendingSync() []model.ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneChanges(s.state.pendingSync)
}

func (s *HomeStore) ActiveHomeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.activeHomeID
}

func (s *HomeStore) Region() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.region
}

func (s *HomeStore) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.theme
}

func (s *HomeStore) IsHydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.hydrated
}

func (s *HomeStore) NotificationsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.notificationsEnabled
}

// SearchSnapshot returns the read-only view Search operates on.
func (s *HomeStore) SearchSnapshot() SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SearchSnapshot{
		Tasks:        cloneTasks(s.state.tasks),
		Items:        cloneItems(s.state.items),
		Homes:        cloneHomes(s.state.homes),
		ActiveHomeID: s.state.activeHomeID,
	}
}

// ensureActiveHomeLocked upholds the non-empty-homes invariant and makes
// sure activeHomeID points at one of them. Callers hold s.mu.
func (s *HomeStore) ensureActiveHomeLocked() {
	s.state.homes = ensureHomePresence(s.state.homes, s.now())
	if !homeExists(s.state.homes, s.state.activeHomeID) {
		s.state.activeHomeID = s.state.homes[0].ID
	}
}

// persistLocked queues a fire-and-forget write of the current snapshot.
// Callers hold s.mu.
func (s *HomeStore) persistLocked() {
	s.persist.enqueue(s.snapshotLocked())
}

func (s *HomeStore) snapshotLocked() model.Snapshot {
	homes := ensureHomePresence(s.state.homes, s.now())
	active := s.state.activeHomeID
	if !homeExists(homes, active) {
		active = homes[0].ID
	}
	return model.Snapshot{
		Homes:        cloneHomes(homes),
		ActiveHomeID: active,
		Tasks:        cloneTasks(s.state.tasks),
		Items:        cloneItems(s.state.items),
		Region:       s.state.region,
		Theme:        s.state.theme,
		PendingSync:  cloneChanges(s.state.pendingSync),
	}
}

func ensureHomePresence(homes []model.Home, now time.Time) []model.Home {
	if len(homes) > 0 {
		return homes
	}
	return []model.Home{model.DefaultHome(now)}
}

func resolveActiveHome(id string, homes []model.Home) string {
	if homeExists(homes, id) {
		return id
	}
	if len(homes) > 0 {
		return homes[0].ID
	}
	return model.DefaultHomeID
}

func homeExists(homes []model.Home, id string) bool {
	for _, home := range homes {
		if home.ID == id {
			return true
		}
	}
	return false
}

func taskIndex(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func itemIndex(items []model.HomeItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func existingNames(tasks []model.Task) map[string]bool {
	names := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		names[strings.ToLower(task.Name)] = true
	}
	return names
}

func cloneHomes(homes []model.Home) []model.Home {
	if len(homes) == 0 {
		return nil
	}
	dup := make([]model.Home, len(homes))
	copy(dup, homes)
	return dup
}

func cloneTasks(tasks []model.Task) []model.Task {
	if len(tasks) == 0 {
		return nil
	}
	dup := make([]model.Task, len(tasks))
	copy(dup, tasks)
	return dup
}

func cloneItems(items []model.HomeItem) []model.HomeItem {
	if len(items) == 0 {
		return nil
	}
	dup := make([]model.HomeItem, len(items))
	copy(dup, items)
	return dup
}

func cloneChanges(records []model.ChangeRecord) []model.ChangeRecord {
	if len(records) == 0 {
		return nil
	}
	dup := make([]model.ChangeRecord, len(records))
	copy(dup, records)
	return dup
}
