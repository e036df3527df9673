package reader

import "errors"

// Common reader errors
var (
	// ErrInvalidContainer is returned when an object container file's magic,
	// metadata, or sync markers are broken.
	ErrInvalidContainer = errors.New("reader: invalid container file")

	// ErrUnsupportedCodec is returned when a container declares a block
	// compression codec this reader does not implement.
	ErrUnsupportedCodec = errors.New("reader: unsupported codec")
)

// IsInvalidContainerError checks if the error is a broken container file.
func IsInvalidContainerError(err error) bool {
	return errors.Is(err, ErrInvalidContainer)
}

// IsUnsupportedCodecError checks if the error is an unknown block codec.
func IsUnsupportedCodecError(err error) bool {
	return errors.Is(err, ErrUnsupportedCodec)
}
