// Package csrf binds state-mutating form submissions to the session and the
// specific action they target.
//
// Tokens are pure functions of (session id, endpoint name, secret): nothing
// is stored server-side and verification is recomputation plus a timing-safe
// compare. The token's lifecycle is exactly the owning session's identity —
// it remains stable across session key rotation and becomes useless the
// moment the session id does.
package csrf
