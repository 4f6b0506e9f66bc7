package services

import "errors"

var (
	// ErrNotFound covers both missing rows and rows owned by someone else so
	// callers cannot probe for other users' IDs.
	ErrNotFound = errors.New("not found or unauthorized")
	// ErrUpstream wraps failures of the language model call or its output.
	ErrUpstream = errors.New("language model request failed")
	// ErrInvalidImage is returned for uploads that cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")
)
