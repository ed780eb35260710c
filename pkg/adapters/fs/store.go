// Package fs implements core.Store on a directory: one UTF-8 JSON file per
// key, written atomically, with an optional git history of every write.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/git"
)

const (
	// Ext is the extension of every value file.
	Ext = ".json"

	keyGlob = "*" + Ext
)

// Store implements core.Store using the filesystem.
type Store struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
}

// Config holds the configuration for the filesystem store.
type Config struct {
	Path         string
	MustExist    bool
	ReadOnly     bool
	History      bool // commit every write to a git repository at Path
	Logger       *slog.Logger
	ErrorHandler func(error) // watcher errors; defaults to logging
}

// NewStore creates a new filesystem-backed store.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		Path:   config.Path,
		git:    git.NewClient(config.Path, "", config.Logger),
		config: config,
	}
}

// Initialize creates the directory and, with History, the git repository.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
	} else if !s.config.ReadOnly {
		if err := os.MkdirAll(s.Path, 0755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	if !s.config.ReadOnly {
		n, err := sweepTempFiles(s.Path, time.Now().Add(-staleTempAge))
		if err != nil {
			s.config.Logger.Warn("failed to remove stale temp files", "path", s.Path, "error", err)
		} else if n > 0 {
			s.config.Logger.Info("removed stale temp files", "path", s.Path, "count", n)
		}
	}

	if !s.config.History || s.config.ReadOnly {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("store history requires git, which is not installed")
	}
	if !s.git.IsRepo() {
		if err := s.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}
	if _, err := s.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	return nil
}

// ensureIgnore keeps the lock and temp files out of the history.
func (s *Store) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(s.Path, ".gitignore")
	entries := []string{s.git.LockFile(), TempFilePrefix + "*"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var b strings.Builder
	b.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		b.WriteString("\n")
	}
	for _, e := range missing {
		b.WriteString(e + "\n")
	}
	return true, writeFileAtomic(ignorePath, []byte(b.String()), 0644)
}

func (s *Store) path(key string) (string, error) {
	if !core.ValidKey(key) {
		return "", fmt.Errorf("%q: %w", key, core.ErrInvalidKey)
	}
	return filepath.Join(s.Path, key+Ext), nil
}

// Get returns the content of the key's file.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Put atomically replaces the key's file.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return s.record(git.FormatMessage(git.CommitTypeData, key, "write "+key, ""), key+Ext, func() error {
		return writeFileAtomic(p, value, 0644)
	})
}

// Delete removes the key's file. An absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return s.record(git.FormatMessage(git.CommitTypeData, key, "delete "+key, ""), key+Ext, func() error {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	})
}

// record runs write and, with History, commits the touched file while
// holding the git lock.
func (s *Store) record(msg, file string, write func() error) error {
	if !s.config.History {
		return write()
	}

	unlock, err := s.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := write(); err != nil {
		return err
	}
	if err := s.git.Add(file); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	if err := s.git.Commit(msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

// Keys lists the keys present in the directory, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(s.Path), keyGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.Path, err)
	}

	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.TrimSuffix(m, Ext)
		if core.ValidKey(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// History returns up to n commits of the write history, newest first.
func (s *Store) History(n int) ([]string, error) {
	if !s.config.History {
		return nil, fmt.Errorf("history is disabled for %s", s.Path)
	}
	return s.git.Log(n)
}

var (
	_ core.Store     = (*Store)(nil)
	_ core.Watchable = (*Store)(nil)
)
