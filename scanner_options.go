package subzip

import (
	"errors"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	derrors "github.com/pkg/errors"
)

type scannerOption func(*scanner) error

// ScannerConcurrency sets the number of goroutines calling the handler.
// An error is returned if n is less than 1.
func ScannerConcurrency(n int) scannerOption {
	return func(s *scanner) error {
		if n < minConcurrency {
			return ErrMinConcurrency
		}

		s.concurrency = n
		return nil
	}
}

// ScannerPatterns restricts scanning to resources whose relative path matches at least one
// of the doublestar patterns, e.g. "**/*.json".
func ScannerPatterns(patterns ...string) scannerOption {
	return func(s *scanner) error {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return derrors.Wrapf(ErrInvalidPattern, "%q", pattern)
			}
		}

		s.patterns = append(s.patterns, patterns...)
		return nil
	}
}

// ScannerRecursive makes the scanner descend into nested directories of the subdirectory.
func ScannerRecursive() scannerOption {
	return func(s *scanner) error {
		s.recursive = true
		return nil
	}
}

// ScannerIncludeDirs makes the scanner hand directory entries, names ending in "/", to the
// handler too.
func ScannerIncludeDirs() scannerOption {
	return func(s *scanner) error {
		s.includeDirs = true
		return nil
	}
}

func ScannerLogger(logger *slog.Logger) scannerOption {
	return func(s *scanner) error {
		if logger == nil {
			return errors.New("ERROR: logger must not be nil")
		}

		s.logger = logger
		return nil
	}
}
