package domain

import "time"

type ArchiveType int

const (
	Unknown ArchiveType = iota
	Zip
	GzipTar
	Bzip2Tar
	PlainTar
)

func (t ArchiveType) String() string {
	switch t {
	case Zip:
		return "zip"
	case GzipTar:
		return "tar.gz"
	case Bzip2Tar:
		return "tar.bz2"
	case PlainTar:
		return "tar"
	default:
		return "unknown"
	}
}

// ContentType returns the MIME type the archive type is reported under.
func (t ArchiveType) ContentType() string {
	switch t {
	case Zip:
		return "application/zip"
	case GzipTar:
		return "application/x-gzip"
	case Bzip2Tar:
		return "application/x-bzip2"
	case PlainTar:
		return "application/x-tar"
	default:
		return ""
	}
}

func (t ArchiveType) IsTar() bool {
	return t == GzipTar || t == Bzip2Tar || t == PlainTar
}

type Request struct {
	SourcePath           string
	DestinationPath      string
	PreserveTopDirectory bool
}

type Result struct {
	Source       string
	Destination  string
	Type         ArchiveType
	Succeeded    bool
	ErrorMessage string
	Err          error
	Elapsed      time.Duration
}

type Record struct {
	ID                   int64         `json:"id"`
	Source               string        `json:"source"`
	Destination          string        `json:"destination"`
	ArchiveType          string        `json:"archive_type"`
	PreserveTopDirectory bool          `json:"preserve_top_directory"`
	Succeeded            bool          `json:"succeeded"`
	Error                string        `json:"error,omitempty"`
	Elapsed              time.Duration `json:"elapsed"`
	ExtractedAt          time.Time     `json:"extracted_at"`
}

func NewRecord(req Request, res Result) *Record {
	return &Record{
		Source:               req.SourcePath,
		Destination:          req.DestinationPath,
		ArchiveType:          res.Type.String(),
		PreserveTopDirectory: req.PreserveTopDirectory,
		Succeeded:            res.Succeeded,
		Error:                res.ErrorMessage,
		Elapsed:              res.Elapsed,
		ExtractedAt:          time.Now(),
	}
}
