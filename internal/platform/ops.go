package platform

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/notebox/pkg/adapters/fs"
	"github.com/aretw0/notebox/pkg/adapters/memory"
	"github.com/aretw0/notebox/pkg/adapters/sqlite"
	"github.com/aretw0/notebox/pkg/core"
)

// DefaultDatabase is the file name used when the sqlite uri is a directory.
const DefaultDatabase = "notebox.db"

// Init builds and initializes the store selected by the options.
// The 'uri' argument is adapter-specific: a directory for 'fs', a database
// file (or a directory holding DefaultDatabase) for 'sqlite', ignored for
// 'memory'.
func Init(uri string, opts ...Option) (core.Store, error) {
	o := applyOptions(opts)

	if o.store != nil {
		return o.store, nil
	}

	var store core.Store
	switch o.adapter {
	case "fs":
		store = initFS(uri, o)
	case "sqlite":
		s, err := initSQLite(uri, o)
		if err != nil {
			return nil, err
		}
		store = s
	case "memory":
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// sandboxed reports whether writes must be redirected to the temp dir.
func (o *options) sandboxed() bool {
	devSafety := true
	if v, ok := o.config["dev_safety"].(bool); ok {
		devSafety = v
	}
	bypass := o.flag("read_only") || !devSafety
	useTemp := o.flag("temp_dir") || (IsDevRun() && !bypass)

	if IsDevRun() && o.logger != nil {
		switch {
		case o.flag("read_only"):
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)")
		case bypass:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)")
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)")
		}
	}
	return useTemp
}

func initFS(path string, o *options) core.Store {
	resolved := ResolveStorePath(path, o.sandboxed())
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	return fs.NewStore(fs.Config{
		Path:         resolved,
		MustExist:    o.flag("must_exist"),
		ReadOnly:     o.flag("read_only"),
		History:      o.flag("history"),
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})
}

func initSQLite(uri string, o *options) (core.Store, error) {
	if uri == ":memory:" {
		return sqlite.NewStore(sqlite.Config{Path: uri, ReadOnly: o.flag("read_only"), Logger: o.logger}), nil
	}

	dir, file := uri, DefaultDatabase
	if filepath.Ext(uri) != "" {
		dir, file = filepath.Dir(uri), filepath.Base(uri)
	}
	dir = ResolveStorePath(dir, o.sandboxed())

	if o.flag("must_exist") {
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			return nil, fmt.Errorf("database does not exist: %w", err)
		}
	} else if !o.flag("read_only") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return sqlite.NewStore(sqlite.Config{
		Path:     filepath.Join(dir, file),
		ReadOnly: o.flag("read_only"),
		Logger:   o.logger,
	}), nil
}

// Export writes every note of repo as markdown under dir.
func Export(repo *core.Repository, dir string) (int, error) {
	names := make(map[string]string)
	for _, nb := range repo.Notebooks() {
		names[nb.ID] = nb.Name
	}
	return fs.ExportMarkdown(dir, repo.Notes(), names)
}

// Import reads the markdown files under dir into repo. Notebooks are matched
// by name (or id) and created when missing; a blank notebook means the
// default one.
func Import(ctx context.Context, repo *core.Repository, dir string) (int, error) {
	found, err := fs.ImportMarkdown(dir)
	if err != nil {
		return 0, err
	}

	byName := make(map[string]string)
	for _, nb := range repo.Notebooks() {
		byName[nb.Name] = nb.ID
		byName[nb.ID] = nb.ID
	}

	notes := make([]core.Note, 0, len(found))
	for _, mn := range found {
		n := mn.Note
		switch id, ok := byName[mn.Notebook]; {
		case mn.Notebook == "":
			n.NotebookID = core.DefaultNotebookID
		case ok:
			n.NotebookID = id
		default:
			nb, err := repo.AddNotebook(ctx, mn.Notebook)
			if err != nil {
				return 0, fmt.Errorf("failed to create notebook %q: %w", mn.Notebook, err)
			}
			byName[nb.Name] = nb.ID
			n.NotebookID = nb.ID
		}
		notes = append(notes, n)
	}
	return repo.Import(ctx, notes...)
}

// historian is implemented by stores that keep a write history.
type historian interface {
	History(n int) ([]string, error)
}

// History returns up to n entries of the store's write history.
func History(store core.Store, n int) ([]string, error) {
	h, ok := store.(historian)
	if !ok {
		return nil, fmt.Errorf("store %T keeps no history", store)
	}
	return h.History(n)
}

// Close releases stores that hold resources (database handles).
func Close(store core.Store) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
