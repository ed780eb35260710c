package core

import (
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Notes     int        `json:"notes"`
	Tags      int        `json:"tags"`
	Notebooks int        `json:"notebooks"`
	StoreType string     `json:"store_type"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`

	// Unreadable lists the keys the last Load failed to read.
	Unreadable []string `json:"unreadable,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	storeType := "unknown"
	if r.store != nil {
		storeType = "store"
		if comp, ok := r.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	return RepositoryState{
		Notes:      len(r.notes),
		Tags:       len(r.tags),
		Notebooks:  len(r.notebooks),
		StoreType:  storeType,
		LoadedAt:   r.loadedAt,
		Unreadable: slices.Clone(r.unreadable),
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
