package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Layout moves extracted content from a staging directory to its destination.
//
// Distributed archives often wrap everything in one folder named after the
// release (project-v1.2.3/). Unless the caller preserves it, that single
// top-level directory becomes the destination itself.
type Layout struct {
	fs afero.Fs
}

func NewLayout(fs afero.Fs) *Layout {
	return &Layout{fs: fs}
}

func (l *Layout) Normalize(staging, dst string, preserveTopDirectory bool) error {
	entries, err := afero.ReadDir(l.fs, staging)
	if err != nil {
		return err
	}

	if err := l.vacate(dst); err != nil {
		return err
	}

	if len(entries) == 1 && entries[0].IsDir() && !preserveTopDirectory {
		if err := l.fs.Rename(filepath.Join(staging, entries[0].Name()), dst); err != nil {
			return err
		}
		return l.fs.Remove(staging)
	}

	return l.fs.Rename(staging, dst)
}

// vacate refuses a destination with content and clears an empty one so the
// rename never merges into existing files.
func (l *Layout) vacate(dst string) error {
	info, err := l.fs.Stat(dst)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("destination %s already exists", dst)
	}

	empty, err := afero.IsEmpty(l.fs, dst)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("destination %s already exists and is not empty", dst)
	}

	return l.fs.Remove(dst)
}
