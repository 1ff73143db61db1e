package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PhotoRecord indexes one stored photo file.
type PhotoRecord struct {
	ID         uint   `gorm:"primaryKey"`
	EntityType string `gorm:"index:idx_photo_entity"`
	EntityID   string `gorm:"index:idx_photo_entity"`
	URI        string
	SourceURI  string
	StoredAt   time.Time
}

// PhotoRepository manages photo metadata records.
type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, rec *PhotoRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create photo record: %w", err)
	}
	return nil
}

// ListByEntity returns stored URIs for one entity in insertion order.
func (r *PhotoRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]string, error) {
	var recs []PhotoRecord
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	uris := make([]string, len(recs))
	for i, rec := range recs {
		uris[i] = rec.URI
	}
	return uris, nil
}

// FindBySource returns the record previously stored for the same entity
// and source URI, or nil when none exists.
func (r *PhotoRepository) FindBySource(ctx context.Context, entityType, entityID, sourceURI string) (*PhotoRecord, error) {
	var rec PhotoRecord
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND source_uri = ?", entityType, entityID, sourceURI).
		First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("find photo: %w", err)
	}
	return &rec, nil
}

func (r *PhotoRepository) Delete(ctx context.Context, entityType, entityID, uri string) error {
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND uri = ?", entityType, entityID, uri).
		Delete(&PhotoRecord{}).Error; err != nil {
		return fmt.Errorf("delete photo record: %w", err)
	}
	return nil
}
