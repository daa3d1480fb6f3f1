// Package crypto implements the key-derivation and re-encryption discipline
// that makes sharing encrypted content pointers safe.
//
// A symmetric key is derived from the identity's signature over a fixed
// challenge, never from the private key directly, so the registry core never
// handles private key material. Content pointers are sealed with authenticated
// encryption (AES-256-GCM) with a fresh nonce per call; tampering or a wrong
// key fails loudly instead of yielding garbage.
package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/marmos91/docvault/pkg/identity"
)

// KeySize is the symmetric key length in bytes (AES-256).
const KeySize = 32

// Challenge is the fixed message an identity signs to derive its symmetric
// key. Changing it invalidates every previously derived key, so it is part
// of the protocol contract.
const Challenge = "Authenticate"

// SymmetricKey is a session-scoped AES-256 key derived from an identity's
// signature over Challenge.
//
// A SymmetricKey must never be persisted or transmitted. It exists only in
// the caller's process for the lifetime of an authenticated session.
type SymmetricKey [KeySize]byte

// ErrAuthentication indicates the signing capability was unavailable or the
// user declined to sign. User-retriable.
var ErrAuthentication = errors.New("crypto: authentication failed")

// DeriveKey derives the symmetric key for the signer's identity.
//
// The key is SHA-256 of the signature over Challenge. With a deterministic
// signing scheme (Ed25519) the same identity always derives the same key,
// so a recipient can re-derive the key a sharer used for them across
// sessions. With a randomized scheme, callers must derive once and keep the
// key in a Session for the session's lifetime.
func DeriveKey(signer identity.Signer) (SymmetricKey, error) {
	var key SymmetricKey
	sig, err := signer.Sign([]byte(Challenge))
	if err != nil {
		return key, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if len(sig) == 0 {
		return key, fmt.Errorf("%w: empty signature", ErrAuthentication)
	}
	key = sha256.Sum256(sig)
	return key, nil
}

// Session binds an authenticated identity to its derived symmetric key.
//
// A Session is created on authenticate and discarded on logout. Passing the
// session explicitly into every operation that encrypts or decrypts keeps key
// lifetime visible at call sites instead of hiding it in ambient state.
type Session struct {
	id  identity.Identity
	key SymmetricKey
}

// NewSession authenticates the signer by deriving its symmetric key.
//
// Returns ErrAuthentication (wrapped) if signing fails.
func NewSession(signer identity.Signer) (*Session, error) {
	key, err := DeriveKey(signer)
	if err != nil {
		return nil, err
	}
	return &Session{id: signer.Public(), key: key}, nil
}

// Identity returns the authenticated identity.
func (s *Session) Identity() identity.Identity {
	return s.id
}

// Key returns the session's symmetric key.
func (s *Session) Key() SymmetricKey {
	return s.key
}

// Close zeroizes the session key. The session must not be used afterwards.
func (s *Session) Close() {
	for i := range s.key {
		s.key[i] = 0
	}
}
