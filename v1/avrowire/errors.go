package avrowire

import "errors"

// Common wire-level errors
var (
	// ErrTruncated is returned when the stream ends in the middle of an
	// encoded value.
	ErrTruncated = errors.New("avrowire: truncated input")

	// ErrInvalidData is returned when an encoded value is structurally
	// impossible (negative length, bad magic byte, oversized varint).
	ErrInvalidData = errors.New("avrowire: invalid data")
)

// IsTruncatedError checks if the error indicates a truncated stream.
func IsTruncatedError(err error) bool {
	return errors.Is(err, ErrTruncated)
}

// IsInvalidDataError checks if the error indicates structurally invalid input.
func IsInvalidDataError(err error) bool {
	return errors.Is(err, ErrInvalidData)
}
