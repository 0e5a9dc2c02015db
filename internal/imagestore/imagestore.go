package imagestore

import (
	"context"
	"io"
)

// ImageStore persists uploaded image blobs (item photos and the shop banner)
// outside the relational store.
type ImageStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
