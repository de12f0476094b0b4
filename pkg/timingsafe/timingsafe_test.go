package timingsafe_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/timingsafe"
)

func TestEqual_SameBytes(t *testing.T) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	require.NoError(t, err)

	assert.True(t, timingsafe.Equal(b, bytes.Clone(b)))
}

func TestEqual_Empty(t *testing.T) {
	assert.True(t, timingsafe.Equal(nil, nil))
	assert.True(t, timingsafe.Equal([]byte{}, nil))
	assert.False(t, timingsafe.Equal([]byte{0}, nil))
}

func TestEqual_DifferentLengths(t *testing.T) {
	a := []byte("abcdefgh")

	assert.False(t, timingsafe.Equal(a, a[:7]))
	assert.False(t, timingsafe.Equal(a[:7], a))
}

// Flipping any single byte must be detected regardless of its position. This
// is the practical stand-in for a statistical timing test: the comparison goes
// through fixed-length digests, so there is no position-dependent branch to
// measure in the first place.
func TestEqual_AnyDifferingPosition(t *testing.T) {
	a := make([]byte, 64)
	_, err := rand.Read(a)
	require.NoError(t, err)

	for i := range a {
		b := bytes.Clone(a)
		b[i] ^= 0xff
		assert.False(t, timingsafe.Equal(a, b), "difference at byte %d not detected", i)
	}
}

func TestEqual_SharedPrefix(t *testing.T) {
	a := bytes.Repeat([]byte{0xaa}, 32)

	for prefix := 0; prefix < len(a); prefix++ {
		b := bytes.Clone(a)
		b[prefix] = 0xbb
		assert.False(t, timingsafe.Equal(a, b))
	}
}
