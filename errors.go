package spssconverter

import "errors"

// Errors returned by the conversion functions and the metadata model.
// Validation failures and argument-shape failures wrap one of these
// sentinels, so callers can test them with errors.Is.  Errors returned
// by a registered Codec are propagated unmodified.
var (
	// ErrColumnNotFound indicates that a requested variable name is
	// not present in a metadata container's column list.
	ErrColumnNotFound = errors.New("column name not found")

	// ErrInvalidDataFormat indicates that a source or target argument
	// is not one of the accepted shapes (path, byte slice, reader or
	// writer).
	ErrInvalidDataFormat = errors.New("invalid data format")

	// ErrInvalidLayout indicates a layout value outside records/table.
	ErrInvalidLayout = errors.New("invalid layout")

	// ErrInvalidValue indicates a metadata field value that violates
	// its declared constraint.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoCodec indicates that no sav codec has been registered.
	ErrNoCodec = errors.New("no sav codec registered")
)
