package extractor

import (
	"archive/tar"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/teamcutter/xtract/internal/domain"
)

// TARExtractor reads one tar flavour; the compression layer follows the
// detected type.
type TARExtractor struct {
	fs          afero.Fs
	archiveType domain.ArchiveType
}

func NewTAR(fs afero.Fs, archiveType domain.ArchiveType) *TARExtractor {
	return &TARExtractor{fs: fs, archiveType: archiveType}
}

func (te *TARExtractor) Extract(src, dst string) error {
	if !te.archiveType.IsTar() {
		return domain.NewArchiveError(domain.ErrMissingCapability, src,
			fmt.Errorf("tar extracter cannot read %s archives", te.archiveType))
	}

	file, err := te.fs.Open(src)
	if err != nil {
		return domain.NewArchiveError(domain.ErrOpenFailed, src, err)
	}
	defer file.Close()

	reader, cleanup, err := te.getDecompressor(file)
	if err != nil {
		return domain.NewArchiveError(domain.ErrExtractionFailed, src, err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	tr := tar.NewReader(reader)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.NewArchiveError(domain.ErrExtractionFailed, src, err)
		}

		if err := te.extractEntry(tr, header, dst); err != nil {
			return domain.NewArchiveError(domain.ErrExtractionFailed, src, err)
		}
	}
	return nil
}

func (te *TARExtractor) extractEntry(tr *tar.Reader, header *tar.Header, dst string) error {
	switch header.Typeflag {
	case tar.TypeXGlobalHeader, tar.TypeChar, tar.TypeBlock, tar.TypeFifo:
		// metadata and device nodes carry nothing to write
		return nil
	}

	target, err := targetPath(dst, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return makeDir(te.fs, target, header.FileInfo().Mode())
	case tar.TypeReg:
		return writeFile(te.fs, target, tr, header.FileInfo().Mode())
	case tar.TypeSymlink:
		return writeSymlink(te.fs, dst, header.Linkname, target)
	case tar.TypeLink:
		linked, err := targetPath(dst, header.Linkname)
		if err != nil {
			return err
		}
		return copyFile(te.fs, linked, target)
	default:
		// sparse files and vendor types would be written incompletely
		return fmt.Errorf("%s: unsupported entry type %q", header.Name, header.Typeflag)
	}
}

func (te *TARExtractor) getDecompressor(file afero.File) (io.Reader, func(), error) {
	switch te.archiveType {
	case domain.GzipTar:
		gzr, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gzr, func() { gzr.Close() }, nil

	case domain.Bzip2Tar:
		bzr, err := bzip2.NewReader(file, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("bzip2: %w", err)
		}
		return bzr, func() { bzr.Close() }, nil

	default:
		return file, nil, nil
	}
}
