package subzip

import (
	"errors"
	"log/slog"
)

type iteratorOption func(*Iterator) error

// WithLogger sets the logger used for debug records about opening and draining the archive.
func WithLogger(logger *slog.Logger) iteratorOption {
	return func(it *Iterator) error {
		if logger == nil {
			return errors.New("ERROR: logger must not be nil")
		}

		it.logger = logger
		return nil
	}
}
