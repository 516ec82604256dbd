package extractor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// targetPath joins name onto dst and rejects entries that would land outside it.
func targetPath(dst, name string) (string, error) {
	target := filepath.Join(dst, name)
	rel, err := filepath.Rel(dst, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path in archive: %s", name)
	}
	return target, nil
}

func makeDir(fs afero.Fs, target string, mode os.FileMode) error {
	if err := fs.MkdirAll(target, 0755); err != nil {
		return err
	}
	// owner must keep write access, later entries land inside
	return fs.Chmod(target, mode.Perm()|0700)
}

func writeFile(fs afero.Fs, target string, r io.Reader, mode os.FileMode) error {
	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	outFile, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return err
	}

	if err := outFile.Close(); err != nil {
		return err
	}

	return fs.Chmod(target, perm)
}

func copyFile(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return err
	}

	srcFile, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	return writeFile(fs, dst, srcFile, info.Mode())
}

// writeSymlink creates a link at target. Absolute links and links resolving
// outside root are skipped.
func writeSymlink(fs afero.Fs, root, linkname, target string) error {
	if filepath.IsAbs(linkname) {
		return nil
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return err
	}
	if _, err := targetPath(root, filepath.Join(filepath.Dir(rel), linkname)); err != nil {
		return nil
	}

	linker, ok := fs.(afero.Linker)
	if !ok {
		return fmt.Errorf("symlinks are not supported by %s", fs.Name())
	}

	if err := fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	fs.Remove(target)

	return linker.SymlinkIfPossible(linkname, target)
}
