package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default between runs of the shared
// command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLI_NoteLifecycle(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store")

	out, _, err := run(t, "", "new", "--store", store)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, _, err = run(t, "", "edit", id, "--store", store, "--title", "Groceries", "--tag", "home,errands")
	require.NoError(t, err)
	assert.Contains(t, out, "Note saved: "+id)

	out, _, err = run(t, "milk\neggs\n", "edit", id, "--store", store, "--stdin")
	require.NoError(t, err)

	out, _, err = run(t, "", "show", id, "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "# Groceries")
	assert.Contains(t, out, "tags: home, errands")
	assert.Contains(t, out, "milk\neggs")

	out, _, err = run(t, "", "list", "--store", store, "--filter", "tag:errands")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")

	out, _, err = run(t, "", "tags", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "#home\t1")

	out, _, err = run(t, "n\n", "delete", id, "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")

	out, _, err = run(t, "", "delete", id, "--store", store, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Note deleted")

	out, _, err = run(t, "", "tags", "--store", store)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestCLI_ShowUnknownFallsBackToList(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store")

	out, stderr, err := run(t, "", "show", "missing", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Note missing not found.")
	assert.Contains(t, out, "No notes.")
}

func TestCLI_EditDryRunPrintsDiff(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store")
	out, _, err := run(t, "", "new", "--store", store)
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	out, _, err = run(t, "", "edit", id, "--store", store, "--content", "hello", "--tag", "dry", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+ hello")

	out, _, err = run(t, "", "show", id, "--store", store)
	require.NoError(t, err)
	assert.NotContains(t, out, "hello")

	out, _, err = run(t, "", "tags", "--store", store)
	require.NoError(t, err)
	assert.NotContains(t, out, "dry", "dry run must not grow the vocabulary")
}

func TestCLI_Notebooks(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store")

	out, _, err := run(t, "", "notebooks", "add", "Work", "--store", store)
	require.NoError(t, err)
	nbID := strings.TrimSpace(out)

	_, _, err = run(t, "", "new", "--store", store, "--notebook", nbID)
	require.NoError(t, err)

	out, _, err = run(t, "", "notebooks", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, nbID+"\tWork\t1")

	_, _, err = run(t, "", "notebooks", "remove", "default", "--store", store)
	assert.Error(t, err)

	_, _, err = run(t, "", "notebooks", "remove", nbID, "--store", store)
	require.NoError(t, err)

	out, _, err = run(t, "", "notebooks", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "default\tDefault\t1")
}

func TestCLI_ExportImport(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store")
	dir := t.TempDir()

	out, _, err := run(t, "", "new", "--store", store)
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	out, _, err = run(t, "", "export", dir, "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 notes")

	other := filepath.Join(t.TempDir(), "other")
	out, _, err = run(t, "", "import", dir, "--store", other, "--adapter", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 notes")

	out, _, err = run(t, "", "list", "--store", other, "--adapter", "sqlite", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, id)
}

func TestCLI_Version(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "notebox version")
}
