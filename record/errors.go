package record

import (
	"errors"
	"fmt"
)

var (
	// ErrFrame is returned when a record is truncated, its length markers
	// disagree, or its payload does not have the expected size.
	ErrFrame = errors.New("malformed record")

	// ErrDescriptor is returned for descriptors that cannot be interpreted.
	ErrDescriptor = errors.New("invalid record descriptor")

	// ErrRecordTooLarge is returned when a length marker exceeds the
	// configured maximum record size.
	ErrRecordTooLarge = errors.New("record too large")

	// ErrUnsupportedVersion is returned by DecodeVersioned when no
	// descriptor matches the version stored in the record.
	ErrUnsupportedVersion = errors.New("unsupported layout version")

	errShortPayload = errors.New("short payload")
)

// FrameError describes a malformed record.
type FrameError struct {
	// Offset is the position of the leading length marker in the stream.
	Offset int64
	// Length is the leading length marker.
	Length uint32
	Reason string
	cause  error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("record: malformed record at offset %d (length %d): %s", e.Offset, e.Length, e.Reason)
}

// Unwrap returns ErrFrame together with the underlying I/O error, if any.
func (e *FrameError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrFrame, e.cause}
	}
	return []error{ErrFrame}
}

func descriptorErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDescriptor, fmt.Sprintf(format, args...))
}
