package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

type HTTPFetcher struct {
	client    *http.Client
	fs        afero.Fs
	outputDir string
	silent    bool
}

func New(fs afero.Fs, outputDir string, timeout time.Duration, silent bool) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		fs:        fs,
		outputDir: outputDir,
		silent:    silent,
	}
}

// Fetch downloads url into a temporary file under the output directory and
// returns its path. A non-empty checksum is verified against the SHA-256 of
// the body; the file is removed on mismatch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, checksum string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := f.fs.MkdirAll(f.outputDir, 0755); err != nil {
		return "", err
	}

	file, err := afero.TempFile(f.fs, f.outputDir, "download-*")
	if err != nil {
		return "", err
	}
	dst := file.Name()

	desc := fmt.Sprintf("Downloading %s", displayName(url))
	var bar *progressbar.ProgressBar
	if f.silent {
		bar = progressbar.DefaultBytesSilent(resp.ContentLength, desc)
	} else {
		bar = progressbar.DefaultBytes(resp.ContentLength, desc)
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(file, bar, h), resp.Body); err != nil {
		file.Close()
		f.fs.Remove(dst)
		return "", err
	}
	if err := file.Close(); err != nil {
		f.fs.Remove(dst)
		return "", err
	}

	if checksum != "" {
		actual := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(actual, checksum) {
			f.fs.Remove(dst)
			return "", fmt.Errorf("checksum mismatch: expected %s, got %s", checksum, actual)
		}
	}

	return dst, nil
}

func displayName(url string) string {
	name, _, _ := strings.Cut(path.Base(url), "?")
	return name
}
