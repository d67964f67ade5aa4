// package repositories provides persistence layer implementations for the playlist collection.
package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/fishstation/internal/models"
	"github.com/desertthunder/fishstation/internal/shared"
)

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

var (
	_ models.Store = (*DocumentStore)(nil)
	_ models.Store = (*PlaylistRepository)(nil)
)

// Open returns the [models.Store] configured by cfg.
func Open(cfg shared.StorageConfig) (models.Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: storage path is empty", shared.ErrInvalidConfig)
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendYAML:
		return NewDocumentStore(cfg.Path), nil
	case BackendSQLite:
		db, err := shared.OpenMigrated(cfg.Path)
		if err != nil {
			return nil, &shared.StorageError{Op: "open", Path: cfg.Path, Err: err}
		}
		return NewPlaylistRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
