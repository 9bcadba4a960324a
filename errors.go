package subzip

import (
	"errors"
	"fmt"
)

const minConcurrency = 1

var (
	ErrMinConcurrency = errors.New("ERROR: concurrency must be 1 or greater")
	ErrInvalidPattern = errors.New("ERROR: invalid glob pattern")

	// ErrInvalidLocator is matched by every *InvalidLocatorError.
	ErrInvalidLocator = errors.New("invalid archive locator")
	// ErrArchiveOpen is matched by every *ArchiveOpenError.
	ErrArchiveOpen = errors.New("could not open archive")
	// ErrExhausted is returned by Iterator.Next once no qualifying entries remain.
	ErrExhausted = errors.New("iterator exhausted")
)

// InvalidLocatorError is returned when a locator has the wrong scheme or cannot be decoded.
type InvalidLocatorError struct {
	Locator string
	Reason  string
	Err     error
}

func (e *InvalidLocatorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid archive locator %q: %s: %v", e.Locator, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid archive locator %q: %s", e.Locator, e.Reason)
}

func (e *InvalidLocatorError) Unwrap() error {
	return e.Err
}

func (e *InvalidLocatorError) Is(target error) bool {
	return target == ErrInvalidLocator
}

// ArchiveOpenError is returned when the archive a locator points at cannot be opened or read.
type ArchiveOpenError struct {
	Path string
	Err  error
}

func (e *ArchiveOpenError) Error() string {
	return fmt.Sprintf("could not open archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveOpenError) Unwrap() error {
	return e.Err
}

func (e *ArchiveOpenError) Is(target error) bool {
	return target == ErrArchiveOpen
}
