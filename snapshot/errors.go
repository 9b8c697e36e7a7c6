package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is returned when the record stream does not follow the
	// snapshot layout.
	ErrFormat = errors.New("snapshot: invalid format")

	// ErrMissingBlock is returned when a required block is absent.
	ErrMissingBlock = errors.New("snapshot: missing block")
)

func formatErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}
