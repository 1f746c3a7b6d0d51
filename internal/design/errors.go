package design

import "errors"

var (
	// ErrUnknownFormat is returned for design files that are neither YAML nor HCL.
	ErrUnknownFormat = errors.New("unknown design file format")

	// ErrNoScans is returned for a session without scans, or whose glob matches nothing.
	ErrNoScans = errors.New("session has no scans")

	// ErrInvalid is returned for values the batch cannot be built from.
	ErrInvalid = errors.New("invalid design")
)
