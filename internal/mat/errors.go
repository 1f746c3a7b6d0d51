package mat

import "errors"

var (
	// ErrNotMATFile is returned when the header is not a Level 5 MAT-file header.
	ErrNotMATFile = errors.New("not a level 5 MAT-file")

	// ErrUnsupportedClass is returned for array classes the reader does not decode
	// (sparse, objects, complex numerics).
	ErrUnsupportedClass = errors.New("unsupported array class")

	// ErrTruncated is returned when an element extends past the end of its container.
	ErrTruncated = errors.New("truncated data element")

	// ErrInvalidDims is returned for an array with a negative dimension.
	ErrInvalidDims = errors.New("invalid array dimensions")

	// ErrNotFound is returned by Lookup when a path segment does not resolve.
	ErrNotFound = errors.New("path not found")
)
