package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/pkg/core"
)

var (
	editTitle    string
	editContent  string
	editNotebook string
	editTags     []string
	editUntags   []string
	editStdin    bool
	editDryRun   bool
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a note",
	Long: `Edit changes a note through the autosaving editor.

With --stdin, every line read is appended to the content; the draft is saved
once it stays unchanged for editor.autosave-delay, and once more at EOF.
With --dry-run, the pending diff is printed and the changes are discarded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		var ed *core.Editor
		ed, err = repo.Edit(args[0],
			core.WithAutosaveDelay(cfg.AutosaveDelay()),
			core.OnAutosave(func(n core.Note, err error) {
				if err == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), ed.SavedMarker())
				}
			}),
		)
		if err != nil {
			return err
		}
		defer ed.Close()

		flags := cmd.Flags()
		if flags.Changed("title") {
			err = errors.Join(err, ed.SetTitle(editTitle))
		}
		if flags.Changed("content") {
			err = errors.Join(err, ed.SetContent(editContent))
		}
		if flags.Changed("notebook") {
			err = errors.Join(err, ed.SetNotebook(editNotebook))
		}
		for _, t := range editTags {
			if editDryRun {
				err = errors.Join(err, ed.StageTag(t))
			} else {
				err = errors.Join(err, ed.AddTag(ctx, t))
			}
		}
		for _, t := range editUntags {
			err = errors.Join(err, ed.RemoveTag(t))
		}
		if err != nil {
			return err
		}

		if editDryRun {
			diff := ed.Diff()
			ed.Cancel(func(string) bool { return true })
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
			} else {
				fmt.Fprint(cmd.OutOrStdout(), diff)
			}
			return nil
		}

		if editStdin {
			content := ed.Draft().Content
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if content != "" && !strings.HasSuffix(content, "\n") {
					content += "\n"
				}
				content += scanner.Text()
				if err := ed.SetContent(content); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}

		saved, err := ed.Save(ctx)
		if err != nil {
			return fmt.Errorf("failed to save note: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note saved: %s (%s)\n", saved.ID, saved.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editContent, "content", "", "New content")
	editCmd.Flags().StringVar(&editNotebook, "notebook", "", "Move to notebook id")
	editCmd.Flags().StringSliceVar(&editTags, "tag", nil, "Add tags")
	editCmd.Flags().StringSliceVar(&editUntags, "untag", nil, "Remove tags")
	editCmd.Flags().BoolVar(&editStdin, "stdin", false, "Append lines read from stdin to the content")
	editCmd.Flags().BoolVar(&editDryRun, "dry-run", false, "Print the diff and discard the changes")
}
