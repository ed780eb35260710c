package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/internal/platform"
	"github.com/aretw0/notebox/pkg/adapters/fs"
	"github.com/aretw0/notebox/pkg/adapters/memory"
	"github.com/aretw0/notebox/pkg/adapters/sqlite"
	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/git"
)

func TestInit(t *testing.T) {
	t.Run("FS Creates Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")

		store, err := platform.Init(path, platform.WithForceTemp(true))
		require.NoError(t, err)

		fsStore, ok := store.(*fs.Store)
		require.True(t, ok, "expected fs store, got %T", store)
		assert.Equal(t, path, fsStore.Path)
		assert.DirExists(t, path)
		assert.NoDirExists(t, filepath.Join(path, ".git"))
	})

	t.Run("MustExist Fails If Directory Missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")
		_, err := platform.Init(path, platform.WithMustExist(true), platform.WithForceTemp(true))
		assert.Error(t, err)
	})

	t.Run("History Initializes Git", func(t *testing.T) {
		if !git.IsInstalled() {
			t.Skip("git not installed")
		}
		path := filepath.Join(t.TempDir(), "store")

		_, err := platform.Init(path, platform.WithHistory(true), platform.WithForceTemp(true))
		require.NoError(t, err)
		assert.DirExists(t, filepath.Join(path, ".git"))
	})

	t.Run("SQLite Directory Gets Default Database", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")

		store, err := platform.Init(dir, platform.WithAdapter("sqlite"), platform.WithForceTemp(true))
		require.NoError(t, err)
		t.Cleanup(func() { platform.Close(store) })

		assert.IsType(t, &sqlite.Store{}, store)
		assert.FileExists(t, filepath.Join(dir, platform.DefaultDatabase))
	})

	t.Run("Memory", func(t *testing.T) {
		store, err := platform.Init("", platform.WithAdapter("memory"))
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
		assert.NoError(t, platform.Close(store))
	})

	t.Run("Injected Store Wins", func(t *testing.T) {
		injected := memory.New()
		store, err := platform.Init("ignored", platform.WithAdapter("sqlite"), platform.WithStore(injected))
		require.NoError(t, err)
		assert.Same(t, injected, store)
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init("x", platform.WithAdapter("s3"))
		assert.ErrorContains(t, err, "unknown adapter")
	})
}

func TestNew_LoadsRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")

	repo, err := platform.New(ctx, path, platform.WithForceTemp(true))
	require.NoError(t, err)

	n, err := repo.Create(ctx, "")
	require.NoError(t, err)

	reopened, err := platform.New(ctx, path, platform.WithForceTemp(true))
	require.NoError(t, err)
	got, err := reopened.FindByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.Title, got.Title)
	assert.FileExists(t, filepath.Join(path, core.KeyNotes+fs.Ext))
}

func TestHistory(t *testing.T) {
	_, err := platform.History(memory.New(), 5)
	assert.Error(t, err)

	if !git.IsInstalled() {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store")
	repo, err := platform.New(ctx, path, platform.WithHistory(true), platform.WithForceTemp(true))
	require.NoError(t, err)
	_, err = repo.Create(ctx, "")
	require.NoError(t, err)

	log, err := platform.History(repo.Store(), 10)
	require.NoError(t, err)
	assert.NotEmpty(t, log)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src, err := platform.New(ctx, "", platform.WithAdapter("memory"))
	require.NoError(t, err)

	work, err := src.AddNotebook(ctx, "Work")
	require.NoError(t, err)
	n, err := src.Create(ctx, work.ID)
	require.NoError(t, err)
	n.Title = "Plan"
	n.Content = "ship it"
	n.Tags = []string{"q3"}
	_, err = src.Save(ctx, n)
	require.NoError(t, err)
	_, err = src.Create(ctx, "")
	require.NoError(t, err)

	dir := t.TempDir()
	count, err := platform.Export(src, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.FileExists(t, filepath.Join(dir, "Work", n.ID+".md"))

	// A loose file at the top level lands in the default notebook.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loose.md"), []byte("just text"), 0644))

	dst, err := platform.New(ctx, "", platform.WithAdapter("memory"))
	require.NoError(t, err)
	imported, err := platform.Import(ctx, dst, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	got, err := dst.FindByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plan", got.Title)
	assert.Equal(t, "ship it", got.Content)
	assert.Equal(t, []string{"q3"}, got.Tags)
	assert.NotEqual(t, core.DefaultNotebookID, got.NotebookID)

	var names []string
	for _, nb := range dst.Notebooks() {
		names = append(names, nb.Name)
	}
	assert.Contains(t, names, "Work")

	var loose core.Note
	for _, note := range dst.Notes() {
		if note.Title == "loose" {
			loose = note
		}
	}
	assert.Equal(t, "just text", loose.Content)
	assert.Equal(t, core.DefaultNotebookID, loose.NotebookID)
}
