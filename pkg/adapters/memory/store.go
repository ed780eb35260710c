// Package memory provides a volatile core.Store, used by tests and by the
// "memory" adapter for throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/notebox/pkg/core"
)

// Store keeps values in a map. It also implements core.Watchable by
// broadcasting its own writes, so several repositories sharing one Store
// observe each other.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	subs   map[int]chan core.Event
	nextID int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		data: make(map[string][]byte),
		subs: make(map[int]chan core.Event),
	}
}

func (s *Store) Initialize(ctx context.Context) error { return nil }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if !core.ValidKey(key) {
		return nil, fmt.Errorf("%q: %w", key, core.ErrInvalidKey)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	return slices.Clone(v), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if !core.ValidKey(key) {
		return fmt.Errorf("%q: %w", key, core.ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	typ := core.EventModify
	if _, ok := s.data[key]; !ok {
		typ = core.EventCreate
	}
	s.data[key] = slices.Clone(value)
	s.broadcastLocked(typ, key)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if !core.ValidKey(key) {
		return fmt.Errorf("%q: %w", key, core.ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	s.broadcastLocked(core.EventDelete, key)
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Watch streams events for every Put and Delete until ctx is done.
// Events are dropped for slow consumers.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	ch := make(chan core.Event, 16)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func (s *Store) broadcastLocked(typ core.EventType, key string) {
	ev := core.Event{Type: typ, Key: key, Timestamp: time.Now().Unix()}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{"keys": len(s.data), "watchers": len(s.subs)}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

var (
	_ core.Store                   = (*Store)(nil)
	_ core.Watchable               = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
)
