// Package registration manages one-time signup verification keys.
//
// A key is issued at signup, delivered out of band, and stored only as its
// SHA-256 hash. Verification consumes the key atomically (delete-then-compare)
// so that a single attempt — successful or not — invalidates it. This is the
// smaller sibling of the session key state machine: single-use instead of
// rotating, but with the same timing-safe comparison and the same refusal to
// distinguish "wrong" from "gone" for the caller.
package registration
