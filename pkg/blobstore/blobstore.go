package blobstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key has never been written.
var ErrKeyNotFound = errors.New("blobstore: key not found")

// Store persists whole-collection snapshots under opaque keys. Every write
// replaces the full value for its key; there are no partial updates and no
// cross-key transactions. Within one process the last writer wins, which
// mirrors the single-writer model the application assumes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
