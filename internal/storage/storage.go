package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// BlobStore persists uploaded images and hands back an opaque reference.
// Implementations are swappable: local filesystem or a GridFS bucket in the
// same database the wishes live in.
type BlobStore interface {
	// Save writes the image and returns a reference for later Load calls.
	Save(ctx context.Context, data []byte, ext string) (string, error)

	// Load returns the bytes stored under ref.
	Load(ctx context.Context, ref string) ([]byte, error)
}

// New builds the blob store selected by the STORAGE_BACKEND setting.
func New(backend, uploadDir string, db *mongo.Database) (BlobStore, error) {
	switch backend {
	case "disk", "":
		return NewDiskStore(uploadDir)
	case "gridfs":
		return NewGridFSStore(db)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
