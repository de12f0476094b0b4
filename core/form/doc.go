// Package form decodes multipart submissions behind a CSRF gate.
//
// Every state-mutating submission must carry a token for its own declared
// endpoint name in the TokenField field, placed before any payload fields.
// The reader verifies the token before touching a single declared field; file
// parts in particular are never handed to their readers on a request that is
// going to be rejected, so a forged submission cannot cost upload I/O.
//
// A missing token and an invalid token are distinct errors: the caller can
// tell the user which shape of failure occurred, while everything after the
// gate behaves like a plain form decoder with per-field validation state.
package form
