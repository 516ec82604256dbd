package domain

import (
	"context"

	"go.uber.org/zap"
)

// Reporter receives progress from an extraction. Implementations must not block.
type Reporter interface {
	Info(msg string, fields ...zap.Field)
	Success(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

type Backend interface {
	Extract(src, dst string) error
}

type Detector interface {
	Detect(path string) (ArchiveType, error)
}

type Extractor interface {
	Run(req Request) Result
}

type Fetcher interface {
	Fetch(ctx context.Context, url, sha256 string) (string, error)
}

type Cache interface {
	Has(url string) bool
	GetPath(url string) string
	Store(url, src string) (string, error)
	Checksum(url string) (string, error)
	Size() (int64, error)
	Clear() error
}

type History interface {
	Record(rec *Record) error
	List(limit int) ([]*Record, error)
	Clear() error
	Close() error
}
