package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homecare/internal/model"
)

const snapshotKey = "homecare-data"

// SnapshotRecord is the single keyed row holding the serialized state
// snapshot.
type SnapshotRecord struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// SnapshotRepository persists the one-record snapshot the store writes
// after every mutation.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the persisted snapshot, or nil when nothing has ever been
// saved. A payload that fails to parse is treated as absent, not as an
// error.
func (r *SnapshotRepository) Load(ctx context.Context) (*model.Snapshot, error) {
	var rec SnapshotRecord
	err := r.db.WithContext(ctx).First(&rec, "key = ?", snapshotKey).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(rec.Value), &snap); err != nil {
		log.Printf("[warn] failed to parse stored snapshot, treating as absent: %v", err)
		return nil, nil
	}
	return &snap, nil
}

// Save overwrites the persisted snapshot in a single upsert, so a
// concurrent Load never observes a partial write.
func (r *SnapshotRepository) Save(ctx context.Context, snap model.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	rec := SnapshotRecord{Key: snapshotKey, Value: string(raw), UpdatedAt: time.Now()}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error; err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Clear removes the persisted snapshot entirely.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Delete(&SnapshotRecord{}, "key = ?", snapshotKey).Error; err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
