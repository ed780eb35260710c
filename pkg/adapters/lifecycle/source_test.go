package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/adapters/lifecycle"
	"github.com/aretw0/notebox/pkg/core"
)

func TestSource_ForwardsAndFilters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan core.Event, 3)
	src := lifecycle.NewSource(in, core.KeyNotes)
	require.NoError(t, src.Start(ctx))

	in <- core.Event{Type: core.EventModify, Key: core.KeyTags}
	in <- core.Event{Type: core.EventModify, Key: core.KeyNotes}
	close(in)

	select {
	case e := <-src.Events():
		assert.Equal(t, "MODIFY notes", e.String())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case _, open := <-src.Events():
		assert.False(t, open, "output closes with the input")
	case <-time.After(time.Second):
		t.Fatal("output not closed")
	}
}
