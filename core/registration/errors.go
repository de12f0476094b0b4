package registration

import "errors"

var (
	// ErrKeyInvalid is returned when the presented key is malformed, does not
	// match, was already consumed, or never existed. The cases are deliberately
	// indistinguishable to the caller.
	ErrKeyInvalid = errors.New("registration key is invalid or has expired")
	// ErrKeyNotFound is returned by repositories when no key row exists.
	ErrKeyNotFound = errors.New("registration key not found")
	// ErrInvalidUserID is returned for non-positive user ids.
	ErrInvalidUserID = errors.New("registration: user id must be positive")
	// ErrKeyGeneration is returned when reading random bytes fails.
	ErrKeyGeneration = errors.New("registration: failed to generate key")
	// ErrStoreUnavailable wraps repository I/O failures.
	ErrStoreUnavailable = errors.New("registration store unavailable")
)
