package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/legodeal/legodealbot/internal/config"
)

// Open returns the marker store selected by cfg and the name the marker is kept under
func Open(ctx context.Context, cfg *config.Config) (StorageInterface, string, error) {
	switch cfg.MarkerBackend {
	case config.BackendFile:
		store, err := NewFileStorage(filepath.Dir(cfg.MarkerPath))
		if err != nil {
			return nil, "", err
		}
		return store, filepath.Base(cfg.MarkerPath), nil
	case config.BackendSQLite:
		store, err := NewSQLiteStorage(cfg.MarkerPath)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.MarkerName, nil
	case config.BackendBlob:
		store, err := NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.MarkerName, nil
	}
	return nil, "", fmt.Errorf("unknown marker backend %q", cfg.MarkerBackend)
}
