package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/internal/config"
	"github.com/aretw0/notebox/internal/platform"
	"github.com/aretw0/notebox/pkg/core"
)

var (
	verbose    bool
	configFile string
	storePath  string
	adapter    string
	readOnly   bool

	cfg    *config.AppConfig
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notebox",
	Short: "Notes with tags and notebooks, kept consistent on local storage",
	Long: `Notebox keeps a set of notes, the tag vocabulary derived from them and
their notebooks mutually consistent, persisted as JSON in a local store
(a directory, optionally versioned with git, or a SQLite database).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = c

		level := cfg.LogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
		if cfg.Log.Format == "json" {
			handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
		}
		logger = slog.New(handler)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Store path (overrides store.path)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Store adapter: fs, sqlite or memory (overrides store.adapter)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Open the store without writing to it")
}

// resolveStorePath picks the store location: the --store flag, then the
// config file's store.path (relative to the file), then a store found by
// walking up from the working directory.
func resolveStorePath() string {
	if storePath != "" {
		return storePath
	}
	if cfg.File != "" {
		if filepath.IsAbs(cfg.Store.Path) {
			return cfg.Store.Path
		}
		return filepath.Join(filepath.Dir(cfg.File), cfg.Store.Path)
	}
	if wd, err := os.Getwd(); err == nil {
		if root, err := platform.FindRoot(wd); err == nil {
			return filepath.Join(root, cfg.Store.Path)
		}
	}
	return cfg.Store.Path
}

// openRepo opens and loads the configured repository.
func openRepo(ctx context.Context) (*core.Repository, error) {
	name := cfg.Store.Adapter
	if adapter != "" {
		name = adapter
	}
	path := resolveStorePath()
	logger.Debug("opening store", "adapter", name, "path", path)

	repo, err := platform.New(ctx, path,
		platform.WithAdapter(name),
		platform.WithLogger(logger),
		platform.WithHistory(cfg.Store.History),
		platform.WithReadOnly(readOnly || cfg.Store.ReadOnly),
		platform.WithRepositoryOptions(
			core.WithUntitledTitle(cfg.Editor.UntitledTitle),
			core.WithDefaultNotebookName(cfg.Editor.DefaultNotebook),
			core.WithPreviewLength(cfg.Editor.PreviewLength),
			core.WithDateLayout(cfg.Editor.DateLayout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return repo, nil
}

// closeRepo releases the store behind repo.
func closeRepo(repo *core.Repository) {
	if err := platform.Close(repo.Store()); err != nil {
		logger.Warn("failed to close store", "error", err)
	}
}
