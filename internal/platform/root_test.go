package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   repo/ (.notebox)
	//     subdir/
	//       nested/
	//   configured/ (notebox.yaml)
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	configured := filepath.Join(baseDir, "configured")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(configured, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.Mkdir(filepath.Join(repoDir, StoreDir), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configured, ConfigFile), nil, 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{"Start at Root", repoDir, repoDir, false},
		{"Start in Subdir", subDir, repoDir, false},
		{"Start Nested Deeply", nestedDir, repoDir, false},
		{"Config File Marker", configured, configured, false},
		{"No Root Found", emptyDir, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if tt.wantErr {
				// The temp dir itself could sit under a marked directory.
				if err == nil {
					assert.NotEqual(t, emptyDir, got)
				} else {
					assert.ErrorIs(t, err, ErrNoRoot)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}
}

func TestResolveStorePath(t *testing.T) {
	assert.Equal(t, ".", ResolveStorePath("", false))
	assert.Equal(t, "notes", ResolveStorePath("notes", false))

	inTemp := filepath.Join(t.TempDir(), "store")
	assert.Equal(t, inTemp, ResolveStorePath(inTemp, true))

	assert.Equal(t, filepath.Join(os.TempDir(), "notebox-dev", ".notebox"), ResolveStorePath(".notebox", true))
	assert.Equal(t, filepath.Join(os.TempDir(), "notebox-dev", "default"), ResolveStorePath("", true))
}
