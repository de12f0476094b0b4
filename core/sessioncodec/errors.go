package sessioncodec

import "errors"

// ErrInvalidMACKey is returned when the signing key is not exactly MACKeySize bytes.
var ErrInvalidMACKey = errors.New("sessioncodec: MAC key must be 32 bytes")
