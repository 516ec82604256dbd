package extractor

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name     string
	body     string
	mode     os.FileMode
	dir      bool
	symlink  string
	hardlink string
	typeflag byte
}

func fileEntry(name, body string) entry {
	return entry{name: name, body: body, mode: 0644}
}

func dirEntry(name string) entry {
	return entry{name: name, dir: true, mode: 0755}
}

func writeZip(t *testing.T, path string, entries ...entry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		switch {
		case e.dir:
			hdr.Method = zip.Store
			hdr.SetMode(os.ModeDir | e.mode)
		case e.symlink != "":
			hdr.SetMode(os.ModeSymlink | 0777)
		default:
			hdr.SetMode(e.mode)
		}

		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)

		body := e.body
		if e.symlink != "" {
			body = e.symlink
		}
		if !e.dir {
			_, err = io.WriteString(w, body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}

type compression int

const (
	noCompression compression = iota
	gzipCompression
	bzip2Compression
)

func writeTar(t *testing.T, path string, c compression, entries ...entry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var w io.WriteCloser
	switch c {
	case gzipCompression:
		w = gzip.NewWriter(f)
	case bzip2Compression:
		w, err = bzip2.NewWriter(f, nil)
		require.NoError(t, err)
	default:
		w = nopWriteCloser{f}
	}

	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: int64(e.mode.Perm())}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
		case e.symlink != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.symlink
		case e.hardlink != "":
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = e.hardlink
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.body))
		}
		if e.typeflag != 0 {
			hdr.Typeflag = e.typeflag
		}

		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Size > 0 {
			_, err := io.WriteString(tw, e.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, w.Close())
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func writeRaw(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
