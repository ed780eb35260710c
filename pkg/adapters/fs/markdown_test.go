package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/adapters/fs"
	"github.com/aretw0/notebox/pkg/core"
)

func TestMarkdown_ExportImport(t *testing.T) {
	dir := t.TempDir()
	notes := []core.Note{
		{ID: "n1", Title: "Trip plan", Content: "# Day 1\nbeach\n", Tags: []string{"travel"}, NotebookID: "nb1", LastUpdated: 1700000000000},
		{ID: "n2", Title: "Loose", Content: "no notebook name", Tags: []string{}, NotebookID: core.DefaultNotebookID, LastUpdated: 5},
	}

	n, err := fs.ExportMarkdown(dir, notes, map[string]string{"nb1": "Travel/2024", core.DefaultNotebookID: "Default"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dir, "Travel_2024", "n1.md"))
	assert.FileExists(t, filepath.Join(dir, "Default", "n2.md"))

	imported, err := fs.ImportMarkdown(dir)
	require.NoError(t, err)
	require.Len(t, imported, 2)

	byID := map[string]fs.MarkdownNote{}
	for _, mn := range imported {
		byID[mn.Note.ID] = mn
	}
	trip := byID["n1"]
	assert.Equal(t, "Trip plan", trip.Note.Title)
	assert.Equal(t, "# Day 1\nbeach\n", trip.Note.Content)
	assert.Equal(t, []string{"travel"}, trip.Note.Tags)
	assert.Equal(t, int64(1700000000000), trip.Note.LastUpdated)
	assert.Equal(t, "Travel/2024", trip.Notebook, "frontmatter wins over the directory name")
}

func TestMarkdown_PlainFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Work"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Work", "standup.md"), []byte("just text\r\nline"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.md"), []byte("top"), 0644))

	imported, err := fs.ImportMarkdown(dir)
	require.NoError(t, err)
	require.Len(t, imported, 2)

	byTitle := map[string]fs.MarkdownNote{}
	for _, mn := range imported {
		byTitle[mn.Note.Title] = mn
	}
	assert.Equal(t, "Work", byTitle["standup"].Notebook)
	assert.Equal(t, "just text\nline", byTitle["standup"].Note.Content)
	assert.Empty(t, byTitle["top"].Notebook)
	assert.Empty(t, byTitle["top"].Note.ID)
}

func TestUnmarshalMarkdown_Errors(t *testing.T) {
	_, err := fs.UnmarshalMarkdown([]byte("---\nid: x\nno closing"), "t")
	assert.Error(t, err)

	_, err = fs.UnmarshalMarkdown([]byte("---\ntags: [unclosed\n---\n"), "t")
	assert.Error(t, err)

	mn, err := fs.UnmarshalMarkdown([]byte("---\nid: x\n---"), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "x", mn.Note.ID)
	assert.Equal(t, "fallback", mn.Note.Title)
	assert.Empty(t, mn.Note.Content)
}
