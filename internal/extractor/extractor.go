package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/teamcutter/xtract/internal/domain"
	"github.com/teamcutter/xtract/internal/logging"
	"go.uber.org/zap"
)

// Extractor detects an archive's type, extracts it into a private staging
// directory and moves the result to the requested destination.
//
// An Extractor holds no per-call state; concurrent calls are safe because
// every call stages into its own uniquely named directory.
type Extractor struct {
	fs         afero.Fs
	detector   domain.Detector
	backends   map[domain.ArchiveType]domain.Backend
	layout     *Layout
	reporter   domain.Reporter
	stagingDir string
}

// New builds an Extractor on fs. Staging directories are created under
// stagingDir, or the working directory when it is empty.
func New(fs afero.Fs, reporter domain.Reporter, stagingDir string) *Extractor {
	if reporter == nil {
		reporter = logging.NewReporter(logging.NewNop())
	}

	return &Extractor{
		fs:       fs,
		detector: NewDetector(fs),
		backends: map[domain.ArchiveType]domain.Backend{
			domain.Zip:      NewZIP(fs),
			domain.GzipTar:  NewTAR(fs, domain.GzipTar),
			domain.Bzip2Tar: NewTAR(fs, domain.Bzip2Tar),
			domain.PlainTar: NewTAR(fs, domain.PlainTar),
		},
		layout:     NewLayout(fs),
		reporter:   reporter,
		stagingDir: stagingDir,
	}
}

func (e *Extractor) Detect(path string) (domain.ArchiveType, error) {
	return e.detector.Detect(path)
}

func (e *Extractor) Extract(src, dst string, preserveTopDirectory bool) domain.Result {
	return e.Run(domain.Request{
		SourcePath:           src,
		DestinationPath:      dst,
		PreserveTopDirectory: preserveTopDirectory,
	})
}

func (e *Extractor) Run(req domain.Request) domain.Result {
	res := domain.Result{Source: req.SourcePath, Destination: req.DestinationPath}
	fields := []zap.Field{
		zap.String("source", req.SourcePath),
		zap.String("destination", req.DestinationPath),
	}

	if err := e.validate(req); err != nil {
		return e.fail(res, err, fields)
	}

	archiveType, err := e.detector.Detect(req.SourcePath)
	if err != nil {
		return e.fail(res, err, fields)
	}
	if archiveType == domain.Unknown {
		return e.fail(res, domain.NewArchiveError(domain.ErrUnknownFormat, req.SourcePath, nil), fields)
	}
	res.Type = archiveType
	fields = append(fields, zap.Stringer("type", archiveType))

	backend, ok := e.backends[archiveType]
	if !ok {
		err := fmt.Errorf("no extracter for %s archives", archiveType)
		return e.fail(res, domain.NewArchiveError(domain.ErrMissingCapability, req.SourcePath, err), fields)
	}

	start := time.Now()

	staging, err := e.createStaging()
	if err != nil {
		res.Elapsed = time.Since(start)
		return e.fail(res, domain.NewArchiveError(domain.ErrExtractionFailed, req.SourcePath, err), fields)
	}
	fields = append(fields, zap.String("staging", staging))

	if err := e.fs.MkdirAll(filepath.Dir(req.DestinationPath), 0755); err != nil {
		e.reporter.Info("Could not create destination parent", append(fields, zap.Error(err))...)
	}

	e.reporter.Info(fmt.Sprintf("Extracting %s", req.SourcePath), fields...)

	if err := backend.Extract(req.SourcePath, staging); err != nil {
		e.removeStaging(staging)
		res.Elapsed = time.Since(start)
		return e.fail(res, err, fields)
	}

	e.reporter.Info(fmt.Sprintf("%s extracted", req.SourcePath), fields...)

	if err := e.layout.Normalize(staging, req.DestinationPath, req.PreserveTopDirectory); err != nil {
		e.removeStaging(staging)
		res.Elapsed = time.Since(start)
		return e.fail(res, domain.NewArchiveError(domain.ErrRelocationFailed, req.SourcePath, err), fields)
	}

	res.Elapsed = time.Since(start)
	res.Succeeded = true

	e.reporter.Success(
		fmt.Sprintf("Extracted %s to %s", req.SourcePath, req.DestinationPath),
		append(fields, zap.Duration("elapsed", res.Elapsed))...,
	)

	return res
}

func (e *Extractor) validate(req domain.Request) error {
	if req.SourcePath == "" || req.DestinationPath == "" {
		return domain.NewArchiveError(domain.ErrInvalidRequest, req.SourcePath,
			errors.New("source and destination are required"))
	}

	info, err := e.fs.Stat(req.SourcePath)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewArchiveError(domain.ErrSourceNotFound, req.SourcePath, nil)
	}
	if err != nil {
		return domain.NewArchiveError(domain.ErrOpenFailed, req.SourcePath, err)
	}

	if info.IsDir() {
		return domain.NewArchiveError(domain.ErrInvalidRequest, req.SourcePath,
			errors.New("source is a directory"))
	}

	return nil
}

// createStaging makes a fresh directory named from a random UUID and the
// current time. Mkdir fails on an existing name, so no two calls share one.
func (e *Extractor) createStaging() (string, error) {
	root := e.stagingDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}

	if err := e.fs.MkdirAll(root, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("tmp%s%d", strings.ReplaceAll(uuid.NewString(), "-", ""), time.Now().Unix())
	staging := filepath.Join(root, name)

	if err := e.fs.Mkdir(staging, 0755); err != nil {
		return "", err
	}

	return staging, nil
}

func (e *Extractor) removeStaging(staging string) {
	if err := e.fs.RemoveAll(staging); err != nil {
		e.reporter.Info("Could not remove staging directory",
			zap.String("staging", staging), zap.Error(err))
	}
}

func (e *Extractor) fail(res domain.Result, err error, fields []zap.Field) domain.Result {
	res.Succeeded = false
	res.Err = err
	res.ErrorMessage = err.Error()

	e.reporter.Error(res.ErrorMessage, append(fields, zap.Error(err))...)

	return res
}
