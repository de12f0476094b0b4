// Package session implements the server-side session lifecycle: validation,
// two-phase key rotation, fork detection, and expiry.
//
// # State machine
//
// A persisted session is in one of two states: current-key-only, or
// current+pending-next while a rotation is in flight. Presenting a cookie
// drives one of four transitions:
//
//   - no-op: the key matches the current key and the row is fresh
//   - start-rotation: the key matches the current key, the row is stale, and
//     no rotation is pending; a new key is stored in the pending slot and
//     handed to the client, while the current key remains valid for in-flight
//     requests. At most one pending key exists between confirmations: the
//     store-side guard refuses to replace a pending key, so losers keep
//     serving the current key
//   - confirm-rotation: the key matches the pending key, proving the client
//     adopted the new cookie; the pending key is atomically promoted
//   - fork-detected-wipe: the key matches neither generation; the row is
//     deleted so a duplicated or stolen cookie cannot be replayed forever
//
// The current key is never invalidated before the client has demonstrated
// possession of the next one, which tolerates concurrent requests racing a
// rotation with the old cookie.
//
// # Failure semantics
//
// Validation failures (malformed cookies, unknown ids, expired rows, forked
// keys) all degrade to "no session"; the middleware then mints a fresh guest.
// Only store I/O failures are reported as errors, wrapped in
// ErrStoreUnavailable, since swallowing them would masquerade as an
// invalid-session case.
//
// # Concurrency
//
// The Manager holds no mutable state; all cross-request coordination goes
// through the Repository: PromoteNextKey is a single atomic compare-and-swap,
// and SetNextKey only fills an empty pending slot. No application-level
// locking is required.
package session
