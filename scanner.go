package subzip

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
	derrors "github.com/pkg/errors"
	"github.com/ybirader/subzip/pool"
)

const defaultScanCapacity = 10

// Resource is one entry handed to a ResourceHandler by a scanner.
type Resource struct {
	// Name is the full entry name inside the archive.
	Name string
	// RelativePath is Name relative to the locator's subdirectory.
	RelativePath string
	// Dir is Iterator.IsDir for the entry, so files in nested directories report true.
	Dir      bool
	Size     uint64
	Modified time.Time

	file *zip.File
}

// Open returns a reader over the uncompressed content of the resource. The reader reports
// zip.ErrChecksum at EOF if the content doesn't match its recorded CRC32.
func (r Resource) Open() (io.ReadCloser, error) {
	return r.file.Open()
}

// ResourceHandler is called once per scanned resource, possibly from several goroutines at once.
type ResourceHandler func(ctx context.Context, r Resource) error

type scanner struct {
	handler     ResourceHandler
	concurrency int
	patterns    []string
	includeDirs bool
	recursive   bool
	logger      *slog.Logger
}

// NewScanner returns a scanner that calls handler for the files directly inside a locator's
// subdirectory. Available options include ScannerConcurrency(n int),
// ScannerPatterns(patterns ...string), ScannerRecursive(), ScannerIncludeDirs() and
// ScannerLogger(l *slog.Logger).
func NewScanner(handler ResourceHandler, options ...scannerOption) (*scanner, error) {
	s := &scanner{
		handler:     handler,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Scan walks the entries under locator and dispatches the matching ones to the handler.
// Scanning is canceled when ctx is canceled or the handler fails; the first error is returned.
func (s *scanner) Scan(ctx context.Context, locator string) (err error) {
	it, err := Open(locator, WithLogger(s.logger))
	if err != nil {
		return derrors.Wrapf(err, "ERROR: could not open %s", locator)
	}
	defer func() {
		if closeErr := it.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	workers, err := pool.New(func(ctx context.Context, r Resource) error {
		if err := s.handler(ctx, r); err != nil {
			return derrors.Wrapf(err, "ERROR: could not handle %s", r.Name)
		}
		return nil
	}, &pool.Config{Concurrency: s.concurrency, Capacity: defaultScanCapacity})
	if err != nil {
		return derrors.Wrap(err, "ERROR: could not create scan worker pool")
	}

	workers.Start(ctx)

	for it.HasNext() {
		entry, _ := it.Next()

		r := s.resource(it, entry)
		if !s.wanted(r) {
			continue
		}

		s.logger.Debug("dispatching resource", slog.String("name", r.Name), slog.Bool("dir", r.Dir))
		if err := workers.Enqueue(r); err != nil {
			break
		}
	}

	if err = workers.Close(); err != nil {
		return derrors.Wrapf(err, "ERROR: could not scan %s", locator)
	}

	return nil
}

func (s *scanner) resource(it *Iterator, entry *zip.File) Resource {
	return Resource{
		Name:         entry.Name,
		RelativePath: it.RelativePath(entry),
		Dir:          it.IsDir(entry),
		Size:         entry.UncompressedSize64,
		Modified:     entry.Modified,
		file:         entry,
	}
}

// wanted reports whether r passes the directory, depth and pattern filters. Patterns were
// validated by ScannerPatterns so Match can't fail here.
func (s *scanner) wanted(r Resource) bool {
	switch {
	case strings.HasSuffix(r.Name, separator):
		if !s.includeDirs {
			return false
		}
	case r.Dir:
		// a file below a nested directory
		if !s.recursive {
			return false
		}
	}
	if len(s.patterns) == 0 {
		return true
	}

	for _, pattern := range s.patterns {
		if ok, _ := doublestar.Match(pattern, r.RelativePath); ok {
			return true
		}
	}
	return false
}
