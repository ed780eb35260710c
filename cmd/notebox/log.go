package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/internal/platform"
)

var logCount int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the write history of the store",
	Long:  `Log prints the git history kept when store.history is enabled (fs adapter only).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		entries, err := platform.History(repo.Store(), logCount)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logCount, "number", "n", 20, "Number of entries")
}
