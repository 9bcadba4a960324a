package subzip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

const rootEntryName = "./"

type ListerCLI struct {
	Locator  string
	Patterns []string
	Long     bool
	Out      io.Writer
	Logger   *slog.Logger
}

// List prints the entries under the locator's subdirectory in archive order, one relative
// path per line. In long mode each line is prefixed with the entry kind and its size.
func (c *ListerCLI) List(ctx context.Context) error {
	for _, pattern := range c.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Wrapf(ErrInvalidPattern, "%q", pattern)
		}
	}

	var options []iteratorOption
	if c.Logger != nil {
		options = append(options, WithLogger(c.Logger))
	}

	it, err := Open(c.Locator, options...)
	if err != nil {
		return errors.Wrapf(err, "ERROR: could not open %s", c.Locator)
	}
	defer it.Close()

	out := c.out()
	for entry := range it.All() {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := it.RelativePath(entry)
		if !c.matches(rel) {
			continue
		}
		if rel == "" {
			rel = rootEntryName
		}

		if c.Long {
			kind, size := "f", humanize.Bytes(entry.UncompressedSize64)
			if it.IsDir(entry) {
				kind, size = "d", "-"
			}
			_, err = fmt.Fprintf(out, "%s %10s %s\n", kind, size, rel)
		} else {
			_, err = fmt.Fprintln(out, rel)
		}
		if err != nil {
			return errors.Wrap(err, "ERROR: could not write listing")
		}
	}

	return nil
}

func (c *ListerCLI) matches(rel string) bool {
	if len(c.Patterns) == 0 {
		return true
	}

	for _, pattern := range c.Patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (c *ListerCLI) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

type VerifierCLI struct {
	Locator     string
	Patterns    []string
	Concurrency int
	Out         io.Writer
	Logger      *slog.Logger
}

// Verify reads every file below the locator's subdirectory, at any depth, and fails on the
// first entry whose content doesn't match its checksum.
func (c *VerifierCLI) Verify(ctx context.Context) error {
	var files, bytes atomic.Uint64

	options := []scannerOption{ScannerConcurrency(c.Concurrency), ScannerRecursive(), ScannerPatterns(c.Patterns...)}
	if c.Logger != nil {
		options = append(options, ScannerLogger(c.Logger))
	}

	s, err := NewScanner(func(ctx context.Context, r Resource) error {
		rc, err := r.Open()
		if err != nil {
			return errors.Errorf("ERROR: could not open %s: %v", r.Name, err)
		}
		defer rc.Close()

		n, err := io.Copy(io.Discard, rc)
		if err != nil {
			return errors.Wrapf(err, "ERROR: could not verify %s", r.Name)
		}

		files.Add(1)
		bytes.Add(uint64(n))
		return nil
	}, options...)
	if err != nil {
		return errors.Wrap(err, "ERROR: could not create scanner")
	}

	if err = s.Scan(ctx, c.Locator); err != nil {
		return err
	}

	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintf(out, "verified %d files (%s)\n", files.Load(), humanize.Bytes(bytes.Load()))
	return err
}
