// Package storage persists projects, tasks and audit events.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/frops/planner/pkg/domain/planning"
)

// Backend names a planning.Repository implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendGorm   Backend = "gorm"
)

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backends lists the supported backends.
func Backends() []Backend {
	return []Backend{BackendFile, BackendMemory, BackendSQLite, BackendGorm}
}

// Options selects and locates a repository.
type Options struct {
	Backend Backend
	// Root is the workspace root that contains the .planner directory.
	Root string
	// Path overrides the database file for the sqlite and gorm backends.
	// Relative paths are resolved against the .planner directory.
	Path string
}

// Open constructs the repository selected by opts.
func Open(opts Options) (planning.Repository, error) {
	ws := NewWorkspace(opts.Root)

	switch opts.Backend {
	case BackendFile, "":
		return NewFilesystemRepository(opts.Root), nil
	case BackendMemory:
		return NewMemoryRepository(), nil
	case BackendSQLite:
		return NewSQLiteRepository(databasePath(ws, opts.Path, DatabaseFile))
	case BackendGorm:
		return NewGormRepository(databasePath(ws, opts.Path, "planner-orm.db"))
	default:
		return nil, fmt.Errorf("%w: %q (supported: file, memory, sqlite, gorm)", ErrUnknownBackend, opts.Backend)
	}
}

func databasePath(ws *Workspace, path, fallback string) string {
	switch {
	case path == "":
		return filepath.Join(ws.Dir(), fallback)
	case path == ":memory:" || filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(ws.Dir(), path)
	}
}
