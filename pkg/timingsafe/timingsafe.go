// Package timingsafe provides byte comparison that does not leak the position
// of the first differing byte through execution time.
//
// Inputs are first mapped through HMAC-SHA256 under a process-random key, then
// the digests are compared with crypto/subtle. Because the digests always have
// equal length, the comparison cost is independent of both input content and
// input length, which makes the helper safe for comparing secrets of untrusted
// length (session keys, MACs, registration key hashes).
package timingsafe

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
)

// comparisonKey randomizes the digests so an attacker cannot precompute
// collisions for the comparison itself. It never leaves the process.
var comparisonKey = func() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("timingsafe: failed to read random comparison key: " + err.Error())
	}
	return key
}()

func digest(b []byte) []byte {
	mac := hmac.New(sha256.New, comparisonKey)
	mac.Write(b)
	return mac.Sum(nil)
}

// Equal reports whether a and b hold the same bytes. The execution time
// depends only on the total input length, never on where the inputs differ.
// Inputs of different lengths compare unequal without short-circuiting.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(digest(a), digest(b)) == 1
}
