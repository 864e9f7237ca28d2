package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"wishwall/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// GridFSStore keeps images inside the wish database itself, for deployments
// without a writable data directory. The reference is the file id in hex.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %v: %w", err, models.ErrStorage)
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set write deadline: %v: %w", err, models.ErrStorage)
		}
	}

	id, err := s.bucket.UploadFromStream("wish"+ext, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %v: %w", err, models.ErrStorage)
	}
	return id.Hex(), nil
}

func (s *GridFSStore) Load(ctx context.Context, ref string) ([]byte, error) {
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, fmt.Errorf("image %q: %w", ref, models.ErrNotFound)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %v: %w", err, models.ErrStorage)
		}
	}

	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(id, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("image %q: %w", ref, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download image: %v: %w", err, models.ErrStorage)
	}
	return buf.Bytes(), nil
}
