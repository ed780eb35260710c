package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/internal/platform"
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write every note as markdown with YAML frontmatter",
	Long:  `Export writes <dir>/<notebook>/<id>.md for every note.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		n, err := platform.Export(repo, args[0])
		if err != nil {
			return fmt.Errorf("export failed after %d notes: %w", n, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d notes to %s\n", n, args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Read markdown notes into the store",
	Long: `Import reads every *.md file under dir. Notes with a known id replace the
stored version; notebooks are matched by name and created when missing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo(cmd.Context())
		if err != nil {
			return err
		}
		defer closeRepo(repo)

		n, err := platform.Import(cmd.Context(), repo, args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notes from %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}
