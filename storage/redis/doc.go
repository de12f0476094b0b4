// Package redis provides a Redis-backed session repository plus client
// initialization with retry logic and connection verification.
//
// Each session lives in a hash under "session:<id>" with a TTL equal to the
// session lifetime, so expired rows disappear without a sweep. The rotation
// promote runs as a Lua script to get the same compare-and-swap atomicity a
// conditional SQL UPDATE gives the PostgreSQL repository.
package redis
