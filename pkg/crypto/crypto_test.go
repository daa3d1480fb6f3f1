package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/marmos91/docvault/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) SymmetricKey {
	t.Helper()
	signer, err := identity.NewEd25519Signer()
	require.NoError(t, err)
	key, err := DeriveKey(signer)
	require.NoError(t, err)
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := newTestKey(t)

	for _, plaintext := range [][]byte{
		[]byte("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"),
		[]byte(""),
		bytes.Repeat([]byte{0xff}, 100),
	} {
		sealed, err := Seal(plaintext, key)
		require.NoError(t, err)

		got, err := Open(sealed, key)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	key := newTestKey(t)
	other := newTestKey(t)

	sealed, err := Seal([]byte("cid"), key)
	require.NoError(t, err)

	_, err = Open(sealed, other)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestOpenDetectsTampering(t *testing.T) {
	key := newTestKey(t)

	sealed, err := Seal([]byte("cid"), key)
	require.NoError(t, err)

	sealed.Ciphertext[0] ^= 0x01
	_, err = Open(sealed, key)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestOpenRejectsBadNonce(t *testing.T) {
	key := newTestKey(t)

	sealed, err := Seal([]byte("cid"), key)
	require.NoError(t, err)

	sealed.Nonce = sealed.Nonce[:4]
	_, err = Open(sealed, key)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSealUsesFreshNonce(t *testing.T) {
	key := newTestKey(t)

	a, err := Seal([]byte("cid"), key)
	require.NoError(t, err)
	b, err := Seal([]byte("cid"), key)
	require.NoError(t, err)

	assert.NotEqual(t, a.Nonce, b.Nonce, "nonce must never repeat for a key")
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDeriveKeyIsStablePerIdentity(t *testing.T) {
	signer, err := identity.NewEd25519Signer()
	require.NoError(t, err)

	k1, err := DeriveKey(signer)
	require.NoError(t, err)
	k2, err := DeriveKey(signer)
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "same identity and challenge must derive the same key")

	other, err := identity.NewEd25519Signer()
	require.NoError(t, err)
	k3, err := DeriveKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

type declinedSigner struct{ id identity.Identity }

func (d declinedSigner) Public() identity.Identity { return d.id }
func (d declinedSigner) Sign([]byte) ([]byte, error) {
	return nil, errors.New("user declined")
}

func TestDeriveKeySigningFailure(t *testing.T) {
	_, err := DeriveKey(declinedSigner{})
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = NewSession(declinedSigner{})
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestReseal(t *testing.T) {
	owner := newTestKey(t)
	recipient := newTestKey(t)

	cid := []byte("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
	sealed, err := Seal(cid, owner)
	require.NoError(t, err)

	resealed, err := Reseal(sealed, owner, recipient)
	require.NoError(t, err)

	// Recipient opens the resealed pointer to the same content identifier.
	got, err := Open(resealed, recipient)
	require.NoError(t, err)
	assert.Equal(t, cid, got)

	// Owner's key does not open the recipient's pointer.
	_, err = Open(resealed, owner)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	// Wrong source key never leaks a resealed pointer.
	_, err = Reseal(sealed, recipient, owner)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSessionLifecycle(t *testing.T) {
	signer, err := identity.NewEd25519Signer()
	require.NoError(t, err)

	sess, err := NewSession(signer)
	require.NoError(t, err)
	assert.Equal(t, signer.Public(), sess.Identity())

	key := sess.Key()
	sess.Close()
	assert.NotEqual(t, key, sess.Key(), "Close must zeroize the session key")
	assert.Equal(t, SymmetricKey{}, sess.Key())
}
