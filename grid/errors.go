package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel wrapped by every ConfigurationError.
	ErrConfiguration = errors.New("grid: invalid configuration")

	// ErrIndexOutOfRange is the sentinel wrapped by every IndexError.
	ErrIndexOutOfRange = errors.New("grid: point index out of range")
)

// ConfigurationError is returned by Build when the point set or the build
// parameters cannot produce a grid. No partially built grid is returned
// alongside it.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "grid: invalid configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IndexError is returned by Query for an index outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("grid: point index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
