// Package memory provides in-process repository implementations backed by
// mutex-guarded maps. The conditional key promotion runs under the lock, so
// the same atomicity guarantees hold as for the database-backed stores. Use
// for tests and single-process deployments.
package memory
