package extractor

import (
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/teamcutter/xtract/internal/domain"
)

var errNoDeflate = errors.New("zip extracter requires a deflate decompressor")

type ZIPExtractor struct {
	fs      afero.Fs
	deflate zip.Decompressor
}

func NewZIP(fs afero.Fs) *ZIPExtractor {
	return &ZIPExtractor{
		fs:      fs,
		deflate: flate.NewReader,
	}
}

func (ze *ZIPExtractor) Extract(src, dst string) error {
	if ze.deflate == nil {
		return domain.NewArchiveError(domain.ErrMissingCapability, src, errNoDeflate)
	}

	file, err := ze.fs.Open(src)
	if err != nil {
		return domain.NewArchiveError(domain.ErrOpenFailed, src, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return domain.NewArchiveError(domain.ErrOpenFailed, src, err)
	}

	r, err := zip.NewReader(file, info.Size())
	if err != nil {
		return domain.NewArchiveError(domain.ErrOpenFailed, src, err)
	}
	r.RegisterDecompressor(zip.Deflate, ze.deflate)

	for _, f := range r.File {
		if err := ze.extractFile(f, dst); err != nil {
			return domain.NewArchiveError(domain.ErrExtractionFailed, src, err)
		}
	}

	return nil
}

func (ze *ZIPExtractor) extractFile(f *zip.File, dst string) error {
	target, err := targetPath(dst, f.Name)
	if err != nil {
		return err
	}

	mode := f.Mode()
	if mode.IsDir() {
		return makeDir(ze.fs, target, mode)
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if mode&os.ModeSymlink != 0 {
		linkname, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		return writeSymlink(ze.fs, dst, string(linkname), target)
	}

	return writeFile(ze.fs, target, rc, mode)
}
