package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// Root markers: a store directory or a config file.
const (
	StoreDir   = ".notebox"
	ConfigFile = "notebox.yaml"
)

// ErrNoRoot is returned by FindRoot when no marker is found up to the
// filesystem root.
var ErrNoRoot = errors.New("root not found")

// FindRoot walks up from startDir looking for a StoreDir directory or a
// ConfigFile and returns the absolute path of the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, StoreDir)) || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrNoRoot
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
