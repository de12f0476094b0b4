package session

import "errors"

var (
	// ErrNotFound is returned by repositories when no record exists for an id.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned by repositories when inserting a duplicate id.
	ErrExists = errors.New("session already exists")
	// ErrStoreUnavailable wraps repository I/O failures. Unlike validation
	// failures it must surface to the client as a server error, never be
	// mistaken for an invalid session.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrKeyGeneration is returned when reading random bytes fails.
	ErrKeyGeneration = errors.New("failed to generate session key material")
)
