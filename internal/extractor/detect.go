package extractor

import (
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"github.com/teamcutter/xtract/internal/domain"
)

// sniffLen matches the default read limit of mimetype.
const sniffLen = 3072

// Magic bytes read as a little-endian uint16.
const (
	magicGzip  = 0x8b1f
	magicZip   = 0x4b50
	magicBzip2 = 0x5a42
)

// classifier reports a definitive archive type, or false when inconclusive.
type classifier func(name string, head []byte) (domain.ArchiveType, bool)

type Detector struct {
	fs          afero.Fs
	classifiers []classifier
}

func NewDetector(fs afero.Fs) *Detector {
	return &Detector{
		fs:          fs,
		classifiers: []classifier{byContentType, byMagic, byExtension},
	}
}

// Detect classifies the archive at path. It returns domain.Unknown with a nil
// error when every classifier is inconclusive.
func (d *Detector) Detect(path string) (domain.ArchiveType, error) {
	head, err := d.readHead(path)
	if err != nil {
		return domain.Unknown, domain.NewArchiveError(domain.ErrOpenFailed, path, err)
	}
	return classify(path, head, d.classifiers...), nil
}

func (d *Detector) readHead(path string) ([]byte, error) {
	file, err := d.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return head[:n], nil
}

func classify(name string, head []byte, classifiers ...classifier) domain.ArchiveType {
	for _, c := range classifiers {
		if t, ok := c(name, head); ok {
			return t
		}
	}
	return domain.Unknown
}

var contentTypes = []struct {
	mime string
	typ  domain.ArchiveType
}{
	{"application/zip", domain.Zip},
	{"application/gzip", domain.GzipTar},
	{"application/x-bzip2", domain.Bzip2Tar},
	{"application/x-tar", domain.PlainTar},
}

// byContentType walks the detected MIME and its parents, so zip based
// formats such as jar still resolve to zip. application/octet-stream and
// non-archive types are inconclusive.
func byContentType(_ string, head []byte) (domain.ArchiveType, bool) {
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		for _, ct := range contentTypes {
			if m.Is(ct.mime) {
				return ct.typ, true
			}
		}
	}
	return domain.Unknown, false
}

func byMagic(_ string, head []byte) (domain.ArchiveType, bool) {
	if len(head) < 2 {
		return domain.Unknown, false
	}

	switch binary.LittleEndian.Uint16(head[:2]) {
	case magicGzip:
		return domain.GzipTar, true
	case magicZip:
		return domain.Zip, true
	case magicBzip2:
		return domain.Bzip2Tar, true
	default:
		return domain.Unknown, false
	}
}

var extensions = []struct {
	ext string
	typ domain.ArchiveType
}{
	{".tar.gz", domain.GzipTar},
	{".tgz", domain.GzipTar},
	{".tar", domain.PlainTar},
}

func byExtension(name string, _ []byte) (domain.ArchiveType, bool) {
	name, _, _ = strings.Cut(name, "?")
	name = filepath.Base(name)

	for _, e := range extensions {
		if strings.HasSuffix(name, e.ext) {
			return e.typ, true
		}
	}
	return domain.Unknown, false
}
