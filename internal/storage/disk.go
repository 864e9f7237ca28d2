package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"wishwall/internal/models"

	"github.com/google/uuid"
)

// DiskStore keeps images as uuid-named files in a single upload directory.
// The reference it returns is the bare filename.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %v: %w", err, models.ErrStorage)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("save cancelled: %v: %w", err, models.ErrStorage)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %v: %w", err, models.ErrStorage)
	}
	return name, nil
}

func (s *DiskStore) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %v: %w", err, models.ErrStorage)
	}

	// Refs are bare filenames; anything path-like is not ours.
	if ref == "" || filepath.Base(ref) != ref {
		return nil, fmt.Errorf("image %q: %w", ref, models.ErrNotFound)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image %q: %w", ref, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read image: %v: %w", err, models.ErrStorage)
	}
	return data, nil
}
