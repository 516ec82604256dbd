package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrSourceNotFound    = errors.New("file does not exist")
	ErrUnknownFormat     = errors.New("could not determine type of archive")
	ErrMissingCapability = errors.New("missing capability")
	ErrOpenFailed        = errors.New("could not open archive")
	ErrExtractionFailed  = errors.New("could not extract archive")
	ErrRelocationFailed  = errors.New("could not relocate extracted files")
)

// ArchiveError ties an error kind to the archive path it concerns.
type ArchiveError struct {
	Kind error
	Path string
	Err  error
}

func NewArchiveError(kind error, path string, err error) *ArchiveError {
	return &ArchiveError{Kind: kind, Path: path, Err: err}
}

func (e *ArchiveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
