package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var newNotebook string

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty note",
	Long:  `New creates an untitled note in --notebook (the default notebook when empty or unknown) and prints its id.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		note, err := repo.Create(cmd.Context(), newNotebook)
		if err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), note.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newNotebook, "notebook", "", "Notebook id")
}
