// Package postgres provides PostgreSQL-backed repositories for sessions and
// registration keys, plus connection management with retry logic and embedded
// goose migrations.
//
// Connect establishes a pgxpool with exponential backoff and verifies
// connectivity with a ping before returning. Migrate applies the embedded
// schema migrations through goose using a database/sql handle borrowed from
// the pool.
//
// Session rotation relies on the row-level atomicity of a single conditional
// UPDATE, so concurrent confirmations of the same pending key resolve without
// application locks.
package postgres
