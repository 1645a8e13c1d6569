package entity

import "errors"

// Domain errors for catalog entries and progress records.
var (
	ErrWordNotFound       = errors.New("word not found")
	ErrInvalidWordID      = errors.New("invalid word ID")
	ErrInvalidFamiliarity = errors.New("invalid familiarity level")
	ErrStoreUnavailable   = errors.New("progress store unavailable")
	ErrMalformedCache     = errors.New("malformed local cache")
)
