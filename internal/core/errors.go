package core

import (
	"errors"
	"fmt"
)

// Sentinels shared by the packages around core. MapError checks them before
// falling back to message patterns, so a path or value that happens to
// contain a keyword cannot change the code.
var (
	// ErrFileAccess marks a file that does not exist or cannot be read.
	ErrFileAccess = errors.New("file access failure")

	// ErrNotFound marks a missing file. It wraps ErrFileAccess.
	ErrNotFound = fmt.Errorf("%w: no such file", ErrFileAccess)

	// ErrQueryDocument marks a query document that could not be decoded.
	ErrQueryDocument = errors.New("decode query document")

	// ErrTooLarge marks input over a configured size limit.
	ErrTooLarge = errors.New("input too large")
)
