package identity

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEd25519Signer(t *testing.T) {
	s, err := NewEd25519Signer()
	require.NoError(t, err)
	assert.False(t, s.Public().IsZero())

	sig, err := s.Sign([]byte("hello"))
	require.NoError(t, err)
	assert.True(t, Verify(s.Public(), []byte("hello"), sig))
	assert.False(t, Verify(s.Public(), []byte("tampered"), sig))
}

func TestSigningIsDeterministic(t *testing.T) {
	s, err := NewEd25519Signer()
	require.NoError(t, err)

	msg := []byte("Authenticate")
	sig1, err := s.Sign(msg)
	require.NoError(t, err)
	sig2, err := s.Sign(msg)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(sig1, sig2), "Ed25519 signatures must be deterministic")
}

func TestSignerFromSeedIsStable(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)

	a, err := Ed25519SignerFromSeed(seed)
	require.NoError(t, err)
	b, err := Ed25519SignerFromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, a.Public(), b.Public())

	_, err = Ed25519SignerFromSeed([]byte("short"))
	assert.Error(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	s, err := NewEd25519Signer()
	require.NoError(t, err)

	id := s.Public()
	parsed, err := Parse(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = Parse("zz")
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a, err := NewEd25519Signer()
	require.NoError(t, err)
	b, err := NewEd25519Signer()
	require.NoError(t, err)

	assert.Len(t, Fingerprint(a.Public()), 16)
	assert.NotEqual(t, Fingerprint(a.Public()), Fingerprint(b.Public()))
}
