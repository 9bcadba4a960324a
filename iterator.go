package subzip

import (
	"errors"
	"iter"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zip"
	derrors "github.com/pkg/errors"
)

const separator = "/"

// Iterator walks the entries of one archive that fall under a subdirectory, in the order
// they appear in the archive's central directory. It is forward-only and not safe for
// concurrent use.
//
// Close should be called on the returned iterator when done.
type Iterator struct {
	locator *Locator
	archive *zip.ReadCloser
	logger  *slog.Logger

	// entries and cursor are the unfiltered enumeration; pending is always one qualifying
	// entry ahead of what Next has returned and is nil once the enumeration is exhausted.
	entries []*zip.File
	cursor  int
	pending *zip.File
}

// Open parses locator and returns an iterator positioned at the first entry under its
// subdirectory. Available options include WithLogger(l *slog.Logger).
func Open(locator string, options ...iteratorOption) (*Iterator, error) {
	l, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	return New(l, options...)
}

// New opens the archive referenced by locator. No iterator is returned when the archive
// can't be opened.
func New(locator *Locator, options ...iteratorOption) (*Iterator, error) {
	it := &Iterator{locator: locator, logger: slog.New(slog.DiscardHandler)}

	for _, option := range options {
		if err := option(it); err != nil {
			return nil, err
		}
	}

	archive, err := zip.OpenReader(locator.ArchivePath())
	if err != nil {
		if archive != nil {
			err = errors.Join(err, archive.Close())
		}
		return nil, &ArchiveOpenError{Path: locator.ArchivePath(), Err: err}
	}

	it.archive = archive
	it.entries = archive.File
	it.logger.Debug("opened archive",
		slog.String("archive", locator.ArchivePath()),
		slog.String("subdirectory", locator.Subdirectory()),
		slog.Int("entries", len(it.entries)))

	it.fillNext()

	return it, nil
}

// Locator returns the locator the iterator was created from.
func (it *Iterator) Locator() *Locator {
	return it.locator
}

// HasNext reports whether Next will return another entry.
func (it *Iterator) HasNext() bool {
	return it.pending != nil
}

// Next returns the next entry under the subdirectory and advances the iterator.
// ErrExhausted is returned when HasNext is false.
func (it *Iterator) Next() (*zip.File, error) {
	if it.pending == nil {
		return nil, ErrExhausted
	}

	entry := it.pending
	it.fillNext()

	return entry, nil
}

// All returns a sequence draining the remaining entries. Ranging over it advances the
// same cursor as Next.
func (it *Iterator) All() iter.Seq[*zip.File] {
	return func(yield func(*zip.File) bool) {
		for it.HasNext() {
			entry, _ := it.Next()
			if !yield(entry) {
				return
			}
		}
	}
}

// RelativePath returns the entry name with the subdirectory prefix cut off. Only entries
// returned by this iterator are guaranteed a meaningful result.
func (it *Iterator) RelativePath(entry *zip.File) string {
	n := len(it.locator.Subdirectory())
	if len(entry.Name) <= n {
		return ""
	}
	return entry.Name[n:]
}

// IsDir reports whether entry is treated as a directory: its relative path is blank or
// still contains a separator. The zip directory flag is not consulted, so a file nested
// below the subdirectory also reports true.
func (it *Iterator) IsDir(entry *zip.File) bool {
	rel := it.RelativePath(entry)
	return strings.TrimSpace(rel) == "" || strings.Contains(rel, separator)
}

// IsFile is the negation of IsDir.
func (it *Iterator) IsFile(entry *zip.File) bool {
	return !it.IsDir(entry)
}

// Close releases the archive. The iterator reports no further entries afterwards.
func (it *Iterator) Close() error {
	it.pending = nil
	it.cursor = len(it.entries)

	if it.archive == nil {
		return nil
	}

	err := it.archive.Close()
	it.archive = nil
	if err != nil {
		return derrors.Wrapf(err, "ERROR: could not close archive %s", it.locator.ArchivePath())
	}

	it.logger.Debug("closed archive", slog.String("archive", it.locator.ArchivePath()))
	return nil
}

// fillNext moves pending to the next entry whose name starts with the subdirectory.
// The match is a literal prefix: "ab" also matches "abc/file.txt".
func (it *Iterator) fillNext() {
	prefix := it.locator.Subdirectory()

	for it.cursor < len(it.entries) {
		entry := it.entries[it.cursor]
		it.cursor++

		if strings.HasPrefix(entry.Name, prefix) {
			it.pending = entry
			return
		}
	}

	if it.pending != nil {
		it.logger.Debug("iterator exhausted", slog.String("archive", it.locator.ArchivePath()))
	}
	it.pending = nil
}
