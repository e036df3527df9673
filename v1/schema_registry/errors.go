package schema_registry

import "errors"

// Common schema registry errors
var (
	// ErrUnknownSchemaID is returned when the registry has no schema for the
	// requested identifier.
	ErrUnknownSchemaID = errors.New("schema_registry: unknown schema id")

	// ErrRegistryUnavailable is returned when the registry cannot be reached
	// or answers with a server error. No internal retry is performed.
	ErrRegistryUnavailable = errors.New("schema_registry: registry unavailable")

	// ErrInvalidSchema is returned when the registry returns a document that
	// does not parse as an Avro schema.
	ErrInvalidSchema = errors.New("schema_registry: invalid schema document")
)

// IsUnknownSchemaIDError checks if the error is an unknown schema identifier.
func IsUnknownSchemaIDError(err error) bool {
	return errors.Is(err, ErrUnknownSchemaID)
}

// IsRegistryUnavailableError checks if the error is a registry transport or
// server failure.
func IsRegistryUnavailableError(err error) bool {
	return errors.Is(err, ErrRegistryUnavailable)
}

// IsInvalidSchemaError checks if the error is an unparseable schema document.
func IsInvalidSchemaError(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}
