package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"homecare/internal/repository"
)

// Photo entity kinds. Items carry three independent attachment lists, so
// receipts and warranty documents get their own namespaces.
const (
	PhotoEntityTask         = "task"
	PhotoEntityItem         = "item"
	PhotoEntityItemReceipt  = "item_receipt"
	PhotoEntityItemWarranty = "item_warranty"
)

// PhotoService copies attachment files into a managed directory and
// indexes them per entity. Saving the same source for the same entity
// twice returns the previously stored URI.
type PhotoService struct {
	repo *repository.PhotoRepository
	dir  string
}

func NewPhotoService(repo *repository.PhotoRepository, dir string) *PhotoService {
	return &PhotoService{repo: repo, dir: dir}
}

// List returns the stored URIs for one entity in insertion order.
func (s *PhotoService) List(ctx context.Context, entityType, entityID string) ([]string, error) {
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

// Save copies the source file into the photo directory and records it,
// returning the stable stored URI.
func (s *PhotoService) Save(ctx context.Context, entityType, entityID, sourceURI string) (string, error) {
	existing, err := s.repo.FindBySource(ctx, entityType, entityID, sourceURI)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.URI, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}

	ext := filepath.Ext(sourceURI)
	if ext == "" {
		ext = ".jpg"
	}
	dest := filepath.Join(s.dir, fmt.Sprintf("%s-%s-%s%s", entityType, entityID, uuid.NewString(), ext))
	if err := copyFile(sourceURI, dest); err != nil {
		return "", fmt.Errorf("copy photo: %w", err)
	}

	rec := repository.PhotoRecord{
		EntityType: entityType,
		EntityID:   entityID,
		URI:        dest,
		SourceURI:  sourceURI,
		StoredAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, &rec); err != nil {
		return "", err
	}
	return dest, nil
}

// Delete removes the record and, for files under the managed directory,
// the file itself.
func (s *PhotoService) Delete(ctx context.Context, entityType, entityID, uri string) error {
	if err := s.repo.Delete(ctx, entityType, entityID, uri); err != nil {
		return err
	}

	if strings.HasPrefix(uri, s.dir+string(filepath.Separator)) {
		if err := os.Remove(uri); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove photo file: %w", err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
