package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvChatAPIKey, "")

	c, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, c.File)
	assert.Equal(t, "fs", c.Store.Adapter)
	assert.Equal(t, ".notebox", c.Store.Path)
	assert.Equal(t, 5*time.Second, c.AutosaveDelay())
	assert.Equal(t, 60, c.Editor.PreviewLength)
	assert.Equal(t, "Untitled", c.Editor.UntitledTitle)
	assert.Equal(t, 0.7, c.Chat.Temperature)
	assert.Equal(t, slog.LevelInfo, c.LogLevel())
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileOverridesAndRefillsDefaults(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "notebox.yaml")
	require.NoError(t, os.WriteFile(f, []byte(`
log:
  level: DEBUG
store:
  adapter: sqlite
  path: ""
editor:
  autosave-delay: 250ms
chat:
  max-tokens: 10
`), 0644))

	c, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, f, c.File)
	assert.Equal(t, "sqlite", c.Store.Adapter)
	assert.Equal(t, ".notebox", c.Store.Path, "empty values are refilled")
	assert.Equal(t, 250*time.Millisecond, c.AutosaveDelay())
	assert.Equal(t, slog.LevelDebug, c.LogLevel())

	cc := c.ChatClientConfig()
	assert.Equal(t, 10, cc.MaxTokens)
	assert.Equal(t, 60*time.Second, cc.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"yaml":    "store: [",
		"delay":   "editor:\n  autosave-delay: soon\n",
		"adapter": "store:\n  adapter: s3\n",
	} {
		f := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(f, []byte(body), 0644))
		_, err := Load(f)
		assert.Error(t, err, name)
	}
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvChatAPIKey, "from-env")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Chat.APIKey)
	assert.Equal(t, "from-env", Default().Chat.APIKey)
}

func TestSave_RoundTrip(t *testing.T) {
	f := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.File = f
	c.Server.Addr = ":9999"
	require.NoError(t, c.Save())

	loaded, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, ":9999", loaded.Server.Addr)
}
