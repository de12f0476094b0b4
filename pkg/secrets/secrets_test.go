package secrets_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/secrets"
)

var master = bytes.Repeat([]byte{0x42}, 32)

func TestDerive_Deterministic(t *testing.T) {
	a, err := secrets.Derive(master, "session-mac")
	require.NoError(t, err)
	b, err := secrets.Derive(master, "session-mac")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, secrets.KeySize)
}

func TestDerive_LabelSeparation(t *testing.T) {
	mac, err := secrets.Derive(master, "session-mac")
	require.NoError(t, err)
	csrf, err := secrets.Derive(master, "csrf")
	require.NoError(t, err)

	assert.NotEqual(t, mac, csrf)
}

func TestDerive_MasterSeparation(t *testing.T) {
	other := bytes.Repeat([]byte{0x43}, 32)

	a, err := secrets.Derive(master, "session-mac")
	require.NoError(t, err)
	b, err := secrets.Derive(other, "session-mac")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDerive_MasterTooShort(t *testing.T) {
	_, err := secrets.Derive(master[:31], "session-mac")
	assert.ErrorIs(t, err, secrets.ErrMasterTooShort)
}

func TestDerive_EmptyLabel(t *testing.T) {
	_, err := secrets.Derive(master, "")
	assert.ErrorIs(t, err, secrets.ErrEmptyLabel)
}

func TestMustDerive_PanicsOnBadMaster(t *testing.T) {
	assert.Panics(t, func() {
		secrets.MustDerive(master[:8], "session-mac")
	})
}
