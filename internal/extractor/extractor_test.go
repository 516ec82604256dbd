package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamcutter/xtract/internal/domain"
	"github.com/teamcutter/xtract/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	tmp     string
	staging string
	logs    *observer.ObservedLogs
	ex      *Extractor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	tmp := t.TempDir()
	staging := filepath.Join(tmp, "staging")
	reporter := logging.NewReporter(logging.FromZap(zap.New(core)))

	return &fixture{
		tmp:     tmp,
		staging: staging,
		logs:    logs,
		ex:      New(afero.NewOsFs(), reporter, staging),
	}
}

func (f *fixture) stagingLeftovers(t *testing.T) []string {
	t.Helper()

	if _, err := os.Stat(f.staging); os.IsNotExist(err) {
		return nil
	}
	return dirNames(t, f.staging)
}

func TestExtract_CollapsesTopDirectory(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.tmp, "pkg.zip")
	writeZip(t, src, dirEntry("pkg/"), fileEntry("pkg/a.txt", "a"), fileEntry("pkg/lib/b.txt", "b"))
	dst := filepath.Join(f.tmp, "nested", "dest")

	res := f.ex.Extract(src, dst, false)

	require.True(t, res.Succeeded, res.ErrorMessage)
	assert.Empty(t, res.ErrorMessage)
	assert.NoError(t, res.Err)
	assert.Equal(t, domain.Zip, res.Type)
	assert.Positive(t, res.Elapsed)
	assert.ElementsMatch(t, []string{"a.txt", "lib"}, dirNames(t, dst))
	assert.Equal(t, "b", readFile(t, filepath.Join(dst, "lib", "b.txt")))
	assert.Empty(t, f.stagingLeftovers(t))
}

func TestExtract_PreservesTopDirectory(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.tmp, "pkg.zip")
	writeZip(t, src, dirEntry("pkg/"), fileEntry("pkg/a.txt", "a"))
	dst := filepath.Join(f.tmp, "dest")

	res := f.ex.Extract(src, dst, true)

	require.True(t, res.Succeeded, res.ErrorMessage)
	assert.Equal(t, []string{"pkg"}, dirNames(t, dst))
	assert.Equal(t, "a", readFile(t, filepath.Join(dst, "pkg", "a.txt")))
	assert.Empty(t, f.stagingLeftovers(t))
}

func TestExtract_MultipleTopLevelEntries(t *testing.T) {
	for _, preserve := range []bool{false, true} {
		t.Run(fmt.Sprintf("preserve=%v", preserve), func(t *testing.T) {
			f := newFixture(t)
			src := filepath.Join(f.tmp, "flat.tar.gz")
			writeTar(t, src, gzipCompression, fileEntry("a.txt", "a"), fileEntry("b.txt", "b"))
			dst := filepath.Join(f.tmp, "dest")

			res := f.ex.Extract(src, dst, preserve)

			require.True(t, res.Succeeded, res.ErrorMessage)
			assert.Equal(t, domain.GzipTar, res.Type)
			assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, dirNames(t, dst))
		})
	}
}

func TestExtract_MisnamedArchive(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.tmp, "download")
	writeTar(t, src, bzip2Compression, dirEntry("tool/"), fileEntry("tool/run", "run"))
	dst := filepath.Join(f.tmp, "dest")

	res := f.ex.Extract(src, dst, false)

	require.True(t, res.Succeeded, res.ErrorMessage)
	assert.Equal(t, domain.Bzip2Tar, res.Type)
	assert.Equal(t, []string{"run"}, dirNames(t, dst))
}

func TestExtract_EmptyArchive(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.tmp, "empty.tar")
	writeTar(t, src, noCompression)
	dst := filepath.Join(f.tmp, "dest")

	res := f.ex.Extract(src, dst, false)

	require.True(t, res.Succeeded, res.ErrorMessage)
	assert.DirExists(t, dst)
	assert.Empty(t, dirNames(t, dst))
}

func TestExtract_SourceNotFound(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.tmp, "missing.zip")

	res := f.ex.Extract(src, filepath.Join(f.tmp, "dest"), false)

	assert.False(t, res.Succeeded)
	assert.ErrorIs(t, res.Err, domain.ErrSourceNotFound)
	assert.Contains(t, res.ErrorMessage, src)
	assert.NoDirExists(t, f.staging)
	assert.NoDirExists(t, filepath.Join(f.tmp, "dest"))
}

func TestExtract_UnknownFormat(t *testing.T) {
	f := newFixture(t)
	src := writeRaw(t, f.tmp, "blob", nil)

	res := f.ex.Extract(src, filepath.Join(f.tmp, "dest"), false)

	assert.False(t, res.Succeeded)
	assert.ErrorIs(t, res.Err, domain.ErrUnknownFormat)
	assert.Equal(t, domain.Unknown, res.Type)
	assert.Contains(t, res.ErrorMessage, src)
	assert.NoDirExists(t, f.staging)
}

func TestExtract_InvalidRequest(t *testing.T) {
	f := newFixture(t)

	res := f.ex.Run(domain.Request{SourcePath: "", DestinationPath: "x"})
	assert.ErrorIs(t, res.Err, domain.ErrInvalidRequest)

	res = f.ex.Run(domain.Request{SourcePath: f.tmp, DestinationPath: filepath.Join(f.tmp, "dest")})
	assert.ErrorIs(t, res.Err, domain.ErrInvalidRequest)
	assert.NoDirExists(t, f.staging)
}

func TestExtract_BackendFailureCleansStaging(t *testing.T) {
	f := newFixture(t)
	src := writeRaw(t, f.tmp, "broken.tar", []byte("not a tar archive, only text"))

	res := f.ex.Extract(src, filepath.Join(f.tmp, "dest"), false)

	assert.False(t, res.Succeeded)
	assert.ErrorIs(t, res.Err, domain.ErrExtractionFailed)
	assert.Equal(t, domain.PlainTar, res.Type)
	assert.Empty(t, f.stagingLeftovers(t))
	assert.NoDirExists(t, filepath.Join(f.tmp, "dest"))
}

func TestExtract_SecondRunToSameDestinationFails(t *testing.T) {
	f := newFixture(t)
	first := filepath.Join(f.tmp, "v1.zip")
	writeZip(t, first, dirEntry("pkg/"), fileEntry("pkg/version.txt", "v1"))
	second := filepath.Join(f.tmp, "v2.zip")
	writeZip(t, second, dirEntry("pkg/"), fileEntry("pkg/version.txt", "v2"))
	dst := filepath.Join(f.tmp, "dest")

	res := f.ex.Extract(first, dst, false)
	require.True(t, res.Succeeded, res.ErrorMessage)

	res = f.ex.Extract(second, dst, false)
	assert.False(t, res.Succeeded)
	assert.ErrorIs(t, res.Err, domain.ErrRelocationFailed)

	assert.Equal(t, "v1", readFile(t, filepath.Join(dst, "version.txt")))
	assert.Empty(t, f.stagingLeftovers(t))
}

func TestExtract_Reports(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.tmp, "pkg.zip")
	writeZip(t, src, fileEntry("a.txt", "a"))

	res := f.ex.Extract(src, filepath.Join(f.tmp, "dest"), false)
	require.True(t, res.Succeeded, res.ErrorMessage)

	entries := f.logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "Extracting "+src, entries[0].Message)
	assert.Equal(t, src+" extracted", entries[1].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, "success", entries[2].ContextMap()["status"])
	assert.Equal(t, "zip", entries[2].ContextMap()["type"])

	f.logs.TakeAll()
	res = f.ex.Extract(filepath.Join(f.tmp, "gone.zip"), filepath.Join(f.tmp, "other"), false)
	require.False(t, res.Succeeded)

	errs := f.logs.FilterLevelExact(zapcore.ErrorLevel).AllUntimed()
	require.Len(t, errs, 1)
	assert.Equal(t, res.ErrorMessage, errs[0].Message)
}

func TestExtract_Concurrent(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.tmp, "pkg.tgz")
	writeTar(t, src, gzipCompression, dirEntry("pkg/"), fileEntry("pkg/a.txt", "a"))

	const n = 8
	results := make([]domain.Result, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = f.ex.Extract(src, filepath.Join(f.tmp, fmt.Sprintf("dest-%d", i)), false)
		}()
	}
	wg.Wait()

	for i, res := range results {
		require.True(t, res.Succeeded, res.ErrorMessage)
		assert.Equal(t, "a", readFile(t, filepath.Join(f.tmp, fmt.Sprintf("dest-%d", i), "a.txt")))
	}
	assert.Empty(t, f.stagingLeftovers(t))
}

func TestExtract_NilReporter(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "pkg.zip")
	writeZip(t, src, fileEntry("a.txt", "a"))

	res := New(afero.NewOsFs(), nil, filepath.Join(tmp, "staging")).Extract(src, filepath.Join(tmp, "dest"), false)

	assert.True(t, res.Succeeded, res.ErrorMessage)
}
