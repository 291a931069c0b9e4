package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Retrieve when no object exists under the name
var ErrNotFound = errors.New("object not found")

// StorageInterface defines the contract for storage operations
type StorageInterface interface {
	Store(ctx context.Context, name string, data []byte) error
	Retrieve(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}
