package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// DiskCache keeps downloaded archives under dir/<url hash>/<url base name>.
// The base name keeps any query string so detection sees what was requested.
type DiskCache struct {
	sync.RWMutex
	fs  afero.Fs
	dir string
}

func New(fs afero.Fs, dir string) (*DiskCache, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &DiskCache{fs: fs, dir: dir}, nil
}

func (c *DiskCache) GetPath(url string) string {
	c.RLock()
	defer c.RUnlock()
	return c.getPath(url)
}

func (c *DiskCache) getPath(url string) string {
	return filepath.Join(c.dir, key(url), fileName(url))
}

func (c *DiskCache) Has(url string) bool {
	c.RLock()
	defer c.RUnlock()
	ok, _ := afero.Exists(c.fs, c.getPath(url))
	return ok
}

func (c *DiskCache) Store(url, src string) (string, error) {
	c.Lock()
	defer c.Unlock()

	destPath := c.getPath(url)

	if err := c.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", err
	}

	if err := c.fs.Rename(src, destPath); err != nil {
		return "", err
	}

	return destPath, nil
}

// Checksum returns the hex SHA-256 of the cached file for url.
func (c *DiskCache) Checksum(url string) (string, error) {
	c.RLock()
	defer c.RUnlock()

	file, err := c.fs.Open(c.getPath(url))
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *DiskCache) Size() (int64, error) {
	c.RLock()
	defer c.RUnlock()

	var size int64

	err := afero.Walk(c.fs, c.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	return size, err
}

func (c *DiskCache) Clear() error {
	c.Lock()
	defer c.Unlock()

	return c.fs.RemoveAll(c.dir)
}

func key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:8])
}

func fileName(url string) string {
	name := path.Base(url)
	if name == "/" || name == "." || name == "" {
		return "archive"
	}
	return name
}
