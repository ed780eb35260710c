package core

import (
	"context"
	"regexp"
)

// Keys of the persisted collections. Values are UTF-8 JSON arrays.
const (
	KeyNotes     = "notes"
	KeyTags      = "tags"
	KeyNotebooks = "notebooks"
)

// Store defines the contract for the namespaced key-value store holding the
// serialized collections. It is a passive target: it never initiates a
// mutation on its own.
// Adhering to this interface keeps the domain independent of the underlying
// storage mechanism (files, SQLite, memory).
type Store interface {
	// Initialize ensures the underlying storage is ready (e.g., create directories, schema migration).
	Initialize(ctx context.Context) error

	// Get returns the raw value of key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value of key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns the present keys, sorted.
	Keys(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for stores that can report changes made by
// other writers (another process or another open view).
type Watchable interface {
	// Watch emits an Event per changed key until ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidKey reports whether key is acceptable for every adapter.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}
