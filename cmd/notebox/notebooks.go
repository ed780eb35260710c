package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notebooksCmd = &cobra.Command{
	Use:   "notebooks",
	Short: "List notebooks with note counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		counts := repo.NotebookCounts()
		for _, nb := range repo.Notebooks() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", nb.ID, nb.Name, counts[nb.ID])
		}
		return nil
	},
}

var notebooksAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a notebook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		nb, err := repo.AddNotebook(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to add notebook: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), nb.ID)
		return nil
	},
}

var notebooksRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a notebook, moving its notes to the default notebook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		if err := repo.RemoveNotebook(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to remove notebook: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Notebook removed: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notebooksCmd)
	notebooksCmd.AddCommand(notebooksAddCmd, notebooksRemoveCmd)
}
