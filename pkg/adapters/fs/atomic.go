package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// TempFilePrefix starts the name of every in-flight value file. The
	// watcher ignores files carrying it.
	TempFilePrefix = "notebox-tmp-"

	// staleTempAge is how old a temp file must be before Initialize treats it
	// as left behind by an interrupted write.
	staleTempAge = time.Minute
)

// writeFileAtomic replaces filename with data through a sibling temp file
// named after it, then syncs the directory so the rename survives a crash.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, TempFilePrefix+base+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", base, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp for %s: %w", base, err)
	}
	if runtime.GOOS != "windows" {
		if err = tmp.Chmod(perm); err != nil {
			return fmt.Errorf("chmod temp for %s: %w", base, err)
		}
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp for %s: %w", base, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", base, err)
	}
	if err = os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("replace %s: %w", base, err)
	}
	return syncDir(dir)
}

// syncDir flushes a directory entry. Windows cannot open directories for
// syncing, so it is a no-op there.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir %s: %w", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return fmt.Errorf("sync dir %s: %w", dir, err)
	}
	return nil
}

// sweepTempFiles removes temp files in dir last modified before cutoff and
// returns how many it removed. Newer ones may belong to a live writer.
func sweepTempFiles(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempFilePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
