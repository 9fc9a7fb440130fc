// Package sqlite provides the public API for the SQLite action store.
// This package exposes the factory function for creating stores while
// keeping implementation details internal.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/mesh-intelligence/actstream/internal/sqlite"
	"github.com/mesh-intelligence/actstream/pkg/stream"
	"github.com/mesh-intelligence/actstream/pkg/types"
)

// Store is an action store with an attach/detach lifecycle. It satisfies
// stream.Store.
type Store interface {
	stream.Store

	Attach(config types.Config) error
	Detach() error
	SetLogger(logger *slog.Logger)

	GetAction(ctx context.Context, id string) (*types.Action, error)
	DeleteAction(ctx context.Context, id string) error
	AllActions(ctx context.Context) ([]*types.Action, error)
	ExportJSONL(ctx context.Context, path string) (int, error)
	ImportJSONL(ctx context.Context, path string) (int, error)
}

// NewStore creates a new SQLite action store.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".actstream-db",
//	})
//	defer store.Detach()
func NewStore() Store {
	return sqlite.NewBackend()
}
