package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tag vocabulary with note counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		counts := repo.TagCounts()
		for _, t := range repo.Tags() {
			fmt.Fprintf(cmd.OutOrStdout(), "#%s\t%d\n", t.Name, counts[t.Name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
