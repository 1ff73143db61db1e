package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultHomeID identifies the home synthesized whenever the store
	// would otherwise have none.
	DefaultHomeID = "default-home"

	DefaultRegion = "United States"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NewID returns a prefixed unique identifier.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// DefaultHome synthesizes the fallback home used on first run and
// whenever the homes collection is empty.
func DefaultHome(now time.Time) Home {
	return Home{ID: DefaultHomeID, Name: "My Home", CreatedAt: now}
}

// DemoTasks returns the canned tasks used to seed first-run state.
func DemoTasks(homeID string, now time.Time) []Task {
	due1 := now
	due2 := now.AddDate(0, 0, 5)
	due3 := now.AddDate(0, 0, 12)
	return []Task{
		{
			ID:        "task-1",
			HomeID:    homeID,
			Name:      "Replace HVAC filter",
			Frequency: FrequencySemiannual,
			Room:      "Hallway",
			DueDate:   &due1,
		},
		{
			ID:        "task-2",
			HomeID:    homeID,
			Name:      "Test smoke detectors",
			Frequency: FrequencyMonthly,
			Room:      "Whole Home",
			DueDate:   &due2,
		},
		{
			ID:        "task-3",
			HomeID:    homeID,
			Name:      "Clean gutters",
			Frequency: FrequencyQuarterly,
			Room:      "Exterior",
			DueDate:   &due3,
		},
	}
}

// DemoItems returns the canned items used to seed first-run state.
func DemoItems(homeID string, now time.Time) []HomeItem {
	heaterInstall := now.AddDate(-2, 0, 0)
	heaterWarranty := now.AddDate(4, 0, 0)
	furnaceInstall := now.AddDate(-5, 0, 0)
	furnaceWarranty := now.AddDate(1, 0, 0)
	fridgeInstall := now.AddDate(-1, 0, 0)
	return []HomeItem{
		{
			ID:           "item-1",
			HomeID:       homeID,
			Name:         "Water Heater",
			Model:        "Rheem Performance 50 gal",
			SerialNumber: "WH-12345",
			InstallDate:  &heaterInstall,
			WarrantyEnd:  &heaterWarranty,
			Room:         "Basement",
		},
		{
			ID:           "item-2",
			HomeID:       homeID,
			Name:         "Furnace",
			Model:        "Carrier Comfort 80",
			SerialNumber: "FUR-98765",
			InstallDate:  &furnaceInstall,
			WarrantyEnd:  &furnaceWarranty,
			Room:         "Basement",
		},
		{
			ID:           "item-3",
			HomeID:       homeID,
			Name:         "Refrigerator",
			Model:        "LG SmartCool",
			SerialNumber: "FR-54321",
			InstallDate:  &fridgeInstall,
			Room:         "Kitchen",
		},
	}
}
