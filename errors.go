package pointloc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pointloc/grid"
)

var (
	// ErrConfiguration is returned when the point set or the options cannot
	// produce a usable grid.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIndexOutOfRange is returned when a query names a point that does not
	// exist.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidRadius is returned when a search radius is negative or not a
	// number.
	ErrInvalidRadius = errors.New("radius must be a non-negative number")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")
)

// ErrInvalidHistogram indicates histogram settings that cannot be binned.
type ErrInvalidHistogram struct {
	Config HistogramConfig
}

func (e *ErrInvalidHistogram) Error() string {
	return fmt.Sprintf("invalid histogram: %d bins in [%g, %g)", e.Config.NumBins, e.Config.MinDist, e.Config.MaxDist)
}

func (e *ErrInvalidHistogram) Unwrap() error { return ErrConfiguration }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, grid.ErrConfiguration) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if errors.Is(err, grid.ErrIndexOutOfRange) {
		return fmt.Errorf("%w: %w", ErrIndexOutOfRange, err)
	}

	return err
}
