// Package middleware provides net/http middlewares wiring session loading,
// authentication guards, and request identifiers into the request context.
package middleware
