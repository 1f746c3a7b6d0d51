package spm

import "errors"

// ErrLengthMismatch is returned when parallel inputs disagree in length.
var ErrLengthMismatch = errors.New("length mismatch")
