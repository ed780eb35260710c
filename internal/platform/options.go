package platform

import (
	"log/slog"

	"github.com/aretw0/notebox/pkg/core"
)

// options holds the internal configuration for opening a notebox.
type options struct {
	store    core.Store
	logger   *slog.Logger
	adapter  string
	config   map[string]any
	repoOpts []core.RepositoryOption
}

// Option defines a functional option for configuring notebox.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: "fs",
		config:  make(map[string]any),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStore injects a custom store (e.g. a test double). The adapter setting
// is then ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the store adapter by name: "fs" (default), "sqlite"
// or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithLogger sets the logger for the store and repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepositoryOptions forwards options to core.NewRepository.
func WithRepositoryOptions(opts ...core.RepositoryOption) Option {
	return func(o *options) {
		o.repoOpts = append(o.repoOpts, opts...)
	}
}

// WithHistory commits every fs write to git.
func WithHistory(enabled bool) Option {
	return func(o *options) {
		o.config["history"] = enabled
	}
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist requires the store directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithWatcherErrorHandler registers a callback for errors raised while
// watching the store.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Writes return core.ErrReadOnly.
// 2. Initialization (mkdir, git init) is skipped.
// 3. The dev safety sandbox is bypassed, so a live store can be inspected.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) the store is redirected to a temporary
// directory to prevent accidental data loss.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

func (o *options) flag(name string) bool {
	v, _ := o.config[name].(bool)
	return v
}
