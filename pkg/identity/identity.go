// Package identity defines the public identity and signing contract used
// throughout the registry.
//
// An Identity is an opaque public key. The matching private signing capability
// is held only by its owner and is never seen by the registry core: all the
// core requires is a Signer that can produce signature bytes over a message.
//
// The bundled implementation uses Ed25519. Ed25519 signatures are
// deterministic (same key and message always produce the same signature),
// which makes signature-derived symmetric keys re-derivable across sessions.
// Alternative identity providers only need to satisfy the Signer interface;
// if their signing scheme is randomized, derived keys must be cached for the
// session instead of re-derived per use.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size is the length of an identity public key in bytes (Ed25519).
const Size = ed25519.PublicKeySize

// Identity is an opaque public key identifying a user.
//
// Identities are comparable and usable as map keys. They address accounts
// (see pkg/address) and act as the authorization subject for every mutating
// registry operation.
type Identity [Size]byte

// String returns the lowercase hex encoding of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the identity as a byte slice.
func (id Identity) Bytes() []byte {
	return id[:]
}

// IsZero reports whether the identity is the zero value (no identity).
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText encodes the identity as lowercase hex. Identities serialize
// as readable strings in JSON-stored records.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex identity produced by MarshalText.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Fingerprint returns a short human-readable digest of the identity,
// suitable for display and out-of-band comparison.
func Fingerprint(id Identity) string {
	sum := sha256.Sum256(id[:])
	return hex.EncodeToString(sum[:8])
}

// Parse decodes a hex identity string produced by String.
func Parse(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("identity: invalid hex: %w", err)
	}
	if len(b) != Size {
		return id, fmt.Errorf("identity: expected %d bytes, got %d", Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Signer is the signing capability supplied by an identity provider.
//
// Implementations hold the private key; the registry core only ever sees
// the public identity and opaque signature bytes.
type Signer interface {
	// Public returns the identity this signer signs for.
	Public() Identity

	// Sign signs msg and returns the signature bytes.
	//
	// Returns an error if the signing capability is unavailable or the
	// user declined to sign.
	Sign(msg []byte) ([]byte, error)
}

// Ed25519Signer is a Signer backed by an in-process Ed25519 private key.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  Identity
}

// NewEd25519Signer generates a fresh Ed25519 key pair.
func NewEd25519Signer() (*Ed25519Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: key generation failed: %w", err)
	}
	var id Identity
	copy(id[:], pub)
	return &Ed25519Signer{priv: priv, pub: id}, nil
}

// Ed25519SignerFromSeed builds a signer from a 32-byte seed. The same seed
// always yields the same identity, which is useful for tests and for
// deterministic key storage.
func Ed25519SignerFromSeed(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("identity: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	var id Identity
	copy(id[:], priv.Public().(ed25519.PublicKey))
	return &Ed25519Signer{priv: priv, pub: id}, nil
}

// Public returns the signer's identity.
func (s *Ed25519Signer) Public() Identity {
	return s.pub
}

// Sign signs msg with the private key. Ed25519 signing is deterministic.
func (s *Ed25519Signer) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, msg), nil
}

// Verify reports whether sig is a valid signature by id over msg.
func Verify(id Identity, msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(id[:]), msg, sig)
}
