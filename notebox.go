package notebox

import (
	"context"
	"log/slog"

	"github.com/aretw0/notebox/internal/platform"
	"github.com/aretw0/notebox/pkg/core"
)

// --- Types ---

// Repository is the note/tag/notebook repository.
type Repository = core.Repository

// Note is a public alias for core.Note.
type Note = core.Note

// Store is a public alias for the persistence contract.
type Store = core.Store

// --- Configuration ---

// Option defines a functional option for opening a notebox.
type Option = platform.Option

// WithAdapter selects the store: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStore injects a custom store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithHistory records every fs write in a git repository.
func WithHistory(enabled bool) Option {
	return platform.WithHistory(enabled)
}

// WithReadOnly opens the store for inspection only.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist fails when the store does not exist yet.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithForceTemp redirects the store to the system temp dir.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety toggles the `go run` / `go test` sandbox (on by default).
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithRepositoryOptions forwards options to the repository.
func WithRepositoryOptions(opts ...core.RepositoryOption) Option {
	return platform.WithRepositoryOptions(opts...)
}

// --- Entry points ---

// Open returns a loaded repository on the store at uri.
func Open(ctx context.Context, uri string, opts ...Option) (*Repository, error) {
	return platform.New(ctx, uri, opts...)
}

// FindRoot looks upward from dir for a notebox store or config file.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// Export writes every note as markdown under dir.
func Export(repo *Repository, dir string) (int, error) {
	return platform.Export(repo, dir)
}

// Import reads markdown notes from dir into repo.
func Import(ctx context.Context, repo *Repository, dir string) (int, error) {
	return platform.Import(ctx, repo, dir)
}
