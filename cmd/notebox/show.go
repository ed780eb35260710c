package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/pkg/core"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a note",
	Long:  `Show prints a note. An unknown id prints a notice and falls back to the list view.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		note, err := repo.FindByID(args[0])
		if errors.Is(err, core.ErrNotFound) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Note %s not found.\n", args[0])
			printList(cmd.OutOrStdout(), repo.Visible("", core.Filter{}))
			return nil
		}
		if err != nil {
			return err
		}

		notebook := note.NotebookID
		for _, nb := range repo.Notebooks() {
			if nb.ID == note.NotebookID {
				notebook = nb.Name
			}
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "# %s\n", note.Title)
		fmt.Fprintf(w, "notebook: %s\n", notebook)
		if len(note.Tags) > 0 {
			fmt.Fprintf(w, "tags: %s\n", strings.Join(note.Tags, ", "))
		}
		fmt.Fprintf(w, "updated: %s\n\n", core.FormatRelativeLabel(note.LastUpdated, time.Now().UnixMilli(), cfg.Editor.DateLayout))
		fmt.Fprintln(w, note.Content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
