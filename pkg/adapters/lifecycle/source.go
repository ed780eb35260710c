// Package lifecycle bridges store change events into aretw0/lifecycle.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notebox/pkg/core"
)

type storeSource struct {
	events <-chan core.Event
	keys   map[string]bool
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits store events. When keys
// are given, events for other keys are dropped.
func NewSource(events <-chan core.Event, keys ...string) lifecycle.Source {
	var filter map[string]bool
	if len(keys) > 0 {
		filter = make(map[string]bool, len(keys))
		for _, k := range keys {
			filter[k] = true
		}
	}
	return &storeSource{
		events: events,
		keys:   filter,
		out:    make(chan lifecycle.Event),
	}
}

func (s *storeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the input closes, then closes
// the output. The forwarding goroutine is tracked by lifecycle.Go.
func (s *storeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.keys != nil && !s.keys[e.Key] {
					continue
				}
				// core.Event implements lifecycle.Event.
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
