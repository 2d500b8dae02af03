package cache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBackend is returned by NewStore for unsupported backends
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store is the durable side of the cache
type Store interface {
	// Load returns every persisted entry. A store that does not exist yet
	// returns an empty map and no error.
	Load() (map[string]string, error)

	// Persist makes entries durable. key names the entry that just changed
	// and lets row-based stores write only that entry.
	Persist(entries map[string]string, key string) error

	// Path returns the file backing the store
	Path() string

	// Close releases any resources held by the store
	Close() error
}

// NewStore creates a store for the given backend ("json" or "sqlite"). An
// empty backend is chosen from the file extension.
func NewStore(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case "":
		if IsSQLitePath(path) {
			return NewSQLiteStore(path), nil
		}
		return NewJSONStore(path), nil
	case "json":
		return NewJSONStore(path), nil
	case "sqlite", "sqlite3":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}
