package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note",
	Long:  `Delete permanently removes a note after confirmation and prunes tags no other note uses.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		note, err := repo.FindByID(id)
		if err != nil {
			return err
		}

		if !deleteYes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete %q? [y/N] ", note.Title)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := repo.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}
