// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrCancelled = errors.New("cancelled")
	ErrTimeout   = errors.New("timed out")
	ErrClosed    = errors.New("closed")
)
