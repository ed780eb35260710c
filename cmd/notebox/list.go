package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/pkg/core"
)

var (
	listJSON   bool
	listQuery  string
	listFilter string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Long: `List prints the visible notes: all of them, those matching --query
(title, content or tag, case-insensitive), or those selected by --filter
("tag:<name>" or "notebook:<id>"). A query overrides the filter.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		notes := repo.Visible(listQuery, core.ParseFilter(listFilter))
		if listJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(notes)
		}
		printList(cmd.OutOrStdout(), notes)
		return nil
	},
}

// printList renders one block per note: title, timestamp label, tags and preview.
func printList(w io.Writer, notes []core.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes.")
		return
	}
	for _, n := range notes {
		fmt.Fprintf(w, "%s  %s  (%s)\n", n.ID, n.Title, n.Timestamp)
		if len(n.Tags) > 0 {
			fmt.Fprintf(w, "    #%s\n", strings.Join(n.Tags, " #"))
		}
		if n.Preview != "" {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(n.Preview, "\n", " "))
		}
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Search title, content and tags")
	listCmd.Flags().StringVar(&listFilter, "filter", "", `Filter: "tag:<name>" or "notebook:<id>"`)
}
