package manager

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/teamcutter/xtract/internal/domain"
	"github.com/teamcutter/xtract/internal/logging"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Manager struct {
	fetcher   domain.Fetcher
	cache     domain.Cache
	extractor domain.Extractor
	history   domain.History
	reporter  domain.Reporter
}

// New wires the service. history may be nil to skip recording runs.
func New(
	fetcher domain.Fetcher,
	cache domain.Cache,
	extractor domain.Extractor,
	history domain.History,
	reporter domain.Reporter,
) *Manager {
	if reporter == nil {
		reporter = logging.NewReporter(logging.NewNop())
	}

	return &Manager{
		fetcher:   fetcher,
		cache:     cache,
		extractor: extractor,
		history:   history,
		reporter:  reporter,
	}
}

// Extract runs one extraction. Remote sources are downloaded into the cache
// first; the result keeps the URL as its source.
func (m *Manager) Extract(ctx context.Context, req domain.Request, checksum string) domain.Result {
	local := req

	if domain.IsRemote(req.SourcePath) {
		path, err := m.resolve(ctx, req.SourcePath, checksum)
		if err != nil {
			res := domain.Result{Source: req.SourcePath, Destination: req.DestinationPath}
			res.Err = domain.NewArchiveError(domain.ErrOpenFailed, req.SourcePath, err)
			res.ErrorMessage = res.Err.Error()
			m.record(req, res)
			return res
		}
		local.SourcePath = path
	}

	res := m.extractor.Run(local)
	res.Source = req.SourcePath

	m.record(req, res)
	return res
}

// Batch extracts every source into its own directory under into, named by
// domain.ArchiveStem, running at most parallel extractions at once. The
// returned error combines every failure.
func (m *Manager) Batch(ctx context.Context, sources []string, into string, preserveTopDirectory bool, parallel int) ([]domain.Result, error) {
	results := make([]domain.Result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))

	for i, src := range sources {
		g.Go(func() error {
			results[i] = m.Extract(gctx, domain.Request{
				SourcePath:           src,
				DestinationPath:      filepath.Join(into, domain.ArchiveStem(src)),
				PreserveTopDirectory: preserveTopDirectory,
			}, "")
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, res := range results {
		if !res.Succeeded {
			errs = multierr.Append(errs, res.Err)
		}
	}

	return results, errs
}

func (m *Manager) History(limit int) ([]*domain.Record, error) {
	if m.history == nil {
		return nil, nil
	}
	return m.history.List(limit)
}

// resolve returns a local path for url. A cached copy that does not match
// checksum is downloaded again; Store replaces it.
func (m *Manager) resolve(ctx context.Context, url, checksum string) (string, error) {
	if m.cache.Has(url) {
		if checksum == "" {
			return m.cache.GetPath(url), nil
		}

		sum, err := m.cache.Checksum(url)
		if err == nil && strings.EqualFold(sum, checksum) {
			return m.cache.GetPath(url), nil
		}
		m.reporter.Info("Cached archive does not match checksum, downloading again",
			zap.String("source", url), zap.String("expected", checksum), zap.String("cached", sum))
	}

	path, err := m.fetcher.Fetch(ctx, url, checksum)
	if err != nil {
		return "", err
	}

	return m.cache.Store(url, path)
}

func (m *Manager) record(req domain.Request, res domain.Result) {
	if m.history == nil {
		return
	}

	if err := m.history.Record(domain.NewRecord(req, res)); err != nil {
		m.reporter.Error("Could not record extraction",
			zap.String("source", req.SourcePath), zap.Error(err))
	}
}
