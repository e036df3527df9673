package deserializer

import "errors"

// Common deserializer errors
var (
	// ErrTypeMismatch is returned at compile time when a matched field's Avro
	// type cannot be stored in its target column's declared type.
	ErrTypeMismatch = errors.New("deserializer: type mismatch")

	// ErrMissingRequiredField is returned at compile time when a target
	// column has no matching field in the schema and missing fields are not
	// allowed.
	ErrMissingRequiredField = errors.New("deserializer: required column missing from schema")

	// ErrMalformedData is returned at row execution time when the encoded
	// input is corrupt (union discriminant out of range, invalid enum index).
	ErrMalformedData = errors.New("deserializer: malformed data")

	// ErrUnsupportedSchema is returned by inference when a schema shape has
	// no defined column mapping.
	ErrUnsupportedSchema = errors.New("deserializer: unsupported schema")
)

// IsTypeMismatchError checks if the error is a compile-time type mismatch.
func IsTypeMismatchError(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsMissingRequiredFieldError checks if the error is a missing required column.
func IsMissingRequiredFieldError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField)
}

// IsMalformedDataError checks if the error indicates corrupt row data.
// Truncated-stream errors from the wire layer count as malformed rows.
func IsMalformedDataError(err error) bool {
	return errors.Is(err, ErrMalformedData)
}

// IsUnsupportedSchemaError checks if the error is an inference failure.
func IsUnsupportedSchemaError(err error) bool {
	return errors.Is(err, ErrUnsupportedSchema)
}
