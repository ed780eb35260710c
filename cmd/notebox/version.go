package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/notebox"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notebox",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notebox version %s\n", strings.TrimSpace(notebox.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
