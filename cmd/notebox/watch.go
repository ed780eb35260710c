package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	adapter "github.com/aretw0/notebox/pkg/adapters/lifecycle"
	"github.com/aretw0/notebox/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print changes made to the store until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		w, ok := repo.Store().(core.Watchable)
		if !ok {
			return fmt.Errorf("store %T cannot be watched", repo.Store())
		}
		events, err := w.Watch(ctx)
		if err != nil {
			return err
		}

		source := adapter.NewSource(events)
		if err := source.Start(ctx); err != nil {
			return err
		}
		for e := range source.Events() {
			repo.Load(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%d notes)\n", e, len(repo.Notes()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
