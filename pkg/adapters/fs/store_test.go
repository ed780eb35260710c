package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/adapters/fs"
	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/git"
)

// setupStore creates an initialized store under a fresh temp dir.
func setupStore(t *testing.T, opts ...func(*fs.Config)) (*fs.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "store")
	cfg := fs.Config{Path: path}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := fs.NewStore(cfg)
	require.NoError(t, store.Initialize(context.Background()))
	return store, path
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, path := setupStore(t)
		assert.DirExists(t, path)
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		store := fs.NewStore(fs.Config{Path: filepath.Join(t.TempDir(), "nope"), MustExist: true})
		assert.Error(t, store.Initialize(context.Background()))
	})

	t.Run("Inits Git Repo with History", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		_, path := setupStore(t, func(c *fs.Config) { c.History = true })
		assert.DirExists(t, filepath.Join(path, ".git"))

		ignore, err := os.ReadFile(filepath.Join(path, ".gitignore"))
		require.NoError(t, err)
		assert.Contains(t, string(ignore), git.DefaultLockFile)
		assert.Contains(t, string(ignore), fs.TempFilePrefix+"*")
	})
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, path := setupStore(t)

	_, err := store.Get(ctx, core.KeyNotes)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, store.Put(ctx, core.KeyNotes, []byte(`[{"id":"1"}]`)))
	got, err := store.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))
	assert.FileExists(t, filepath.Join(path, "notes.json"))

	require.NoError(t, store.Delete(ctx, core.KeyNotes))
	_, err = store.Get(ctx, core.KeyNotes)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, core.KeyNotes), "deleting an absent key is not an error")
}

func TestStore_Keys(t *testing.T) {
	ctx := context.Background()
	store, path := setupStore(t)

	for _, k := range []string{core.KeyTags, core.KeyNotes, core.KeyNotebooks} {
		require.NoError(t, store.Put(ctx, k, []byte("[]")))
	}
	require.NoError(t, os.WriteFile(filepath.Join(path, "readme.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(path, "bad key.json"), []byte("x"), 0644))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"notebooks", "notes", "tags"}, keys)
}

func TestStore_InvalidKey(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	for _, key := range []string{"", "../escape", "a/b", "dot.json"} {
		assert.ErrorIs(t, store.Put(ctx, key, nil), core.ErrInvalidKey, key)
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, core.ErrInvalidKey, key)
	}
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	_, path := setupStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(path, "notes.json"), []byte("[]"), 0644))

	ro := fs.NewStore(fs.Config{Path: path, ReadOnly: true})
	require.NoError(t, ro.Initialize(ctx))

	got, err := ro.Get(ctx, core.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
	assert.ErrorIs(t, ro.Put(ctx, core.KeyNotes, []byte("x")), core.ErrReadOnly)
	assert.ErrorIs(t, ro.Delete(ctx, core.KeyNotes), core.ErrReadOnly)
}

func TestStore_History(t *testing.T) {
	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	store, _ := setupStore(t, func(c *fs.Config) { c.History = true })

	require.NoError(t, store.Put(ctx, core.KeyNotes, []byte("[]")))
	require.NoError(t, store.Put(ctx, core.KeyNotes, []byte("[]")), "unchanged value commits nothing")
	require.NoError(t, store.Delete(ctx, core.KeyNotes))

	entries, err := store.History(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0], "data(notes): delete notes")
	assert.Contains(t, entries[1], "data(notes): write notes")
}

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store, path := setupStore(t)

	events, err := store.Watch(ctx)
	require.NoError(t, err)

	next := func() core.Event {
		t.Helper()
		select {
		case e := <-events:
			return e
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for event")
			return core.Event{}
		}
	}

	// Another writer (another process) modifies the directory.
	other := fs.NewStore(fs.Config{Path: path})
	require.NoError(t, other.Put(ctx, core.KeyTags, []byte("[]")))
	e := next()
	assert.Equal(t, core.Event{Type: core.EventCreate, Key: core.KeyTags, Timestamp: e.Timestamp}, e)

	require.NoError(t, other.Put(ctx, core.KeyTags, []byte(`[{"id":"1","name":"x"}]`)))
	e = next()
	assert.Equal(t, core.EventModify, e.Type)
	assert.Equal(t, core.KeyTags, e.Key)

	require.NoError(t, other.Delete(ctx, core.KeyTags))
	e = next()
	assert.Equal(t, core.EventDelete, e.Type)

	state := store.State().(fs.StoreState)
	assert.True(t, state.WatcherActive)
	assert.NotNil(t, state.LastEvent)

	cancel()
	select {
	case _, open := <-events:
		assert.False(t, open, "channel closes once ctx is done")
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}
