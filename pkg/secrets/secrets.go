// Package secrets derives purpose-bound subkeys from a single master secret.
//
// A deployment configures one master secret; every component that needs key
// material (cookie MAC, CSRF binder) derives its own 32-byte subkey under a
// distinct label via HKDF-SHA256. Compromise of one subkey does not reveal the
// master secret or sibling subkeys, and two components can never end up
// accidentally sharing the same raw key.
package secrets

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the length in bytes of every derived subkey.
const KeySize = 32

// minMasterLength guards against trivially brute-forceable master secrets.
const minMasterLength = 32

var (
	// ErrMasterTooShort is returned when the master secret is shorter than 32 bytes.
	ErrMasterTooShort = errors.New("secrets: master secret must be at least 32 bytes")
	// ErrEmptyLabel is returned when a derivation label is empty.
	ErrEmptyLabel = errors.New("secrets: derivation label must not be empty")
)

// Derive produces a 32-byte subkey bound to the given label.
// The same (master, label) pair always yields the same subkey.
func Derive(master []byte, label string) ([]byte, error) {
	if len(master) < minMasterLength {
		return nil, ErrMasterTooShort
	}
	if label == "" {
		return nil, ErrEmptyLabel
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, master, nil, []byte(label))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("secrets: derive %q: %w", label, err)
	}

	return key, nil
}

// MustDerive is Derive that panics on error. Intended for process startup
// where a bad master secret should abort immediately.
func MustDerive(master []byte, label string) []byte {
	key, err := Derive(master, label)
	if err != nil {
		panic(err)
	}
	return key
}
