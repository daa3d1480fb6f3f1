package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrDecryptionFailed indicates the ciphertext failed authentication: the key
// is wrong or the data was corrupted. Never treated as an empty result.
var ErrDecryptionFailed = errors.New("crypto: decryption failed")

// SealedPointer is an encrypted content identifier: the AES-GCM ciphertext
// and the nonce used to produce it.
//
// The nonce is not secret; it travels alongside the ciphertext in the stored
// record. What must never repeat is the (key, nonce) pair, which Seal
// guarantees by drawing a fresh random nonce per call.
type SealedPointer struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
}

// Clone returns a deep copy of the sealed pointer.
func (p SealedPointer) Clone() SealedPointer {
	out := SealedPointer{}
	if p.Ciphertext != nil {
		out.Ciphertext = append([]byte(nil), p.Ciphertext...)
	}
	if p.Nonce != nil {
		out.Nonce = append([]byte(nil), p.Nonce...)
	}
	return out
}

// Seal encrypts plaintext under key with AES-256-GCM and a fresh random
// nonce.
func Seal(plaintext []byte, key SymmetricKey) (SealedPointer, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return SealedPointer{}, fmt.Errorf("crypto: cipher init: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return SealedPointer{}, fmt.Errorf("crypto: gcm init: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return SealedPointer{}, fmt.Errorf("crypto: nonce generation: %w", err)
	}

	return SealedPointer{
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
		Nonce:      nonce,
	}, nil
}

// Open decrypts a sealed pointer with key.
//
// Returns ErrDecryptionFailed if authentication fails (wrong key or
// corrupted ciphertext/nonce).
func Open(sealed SealedPointer, key SymmetricKey) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: cipher init: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: gcm init: %w", err)
	}
	if len(sealed.Nonce) != gcm.NonceSize() {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, sealed.Nonce, sealed.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Reseal decrypts a pointer with from and re-encrypts the same plaintext
// under to. This is the sharing primitive: the underlying content identifier
// is unchanged, only the key that can open it differs.
func Reseal(sealed SealedPointer, from, to SymmetricKey) (SealedPointer, error) {
	plaintext, err := Open(sealed, from)
	if err != nil {
		return SealedPointer{}, err
	}
	return Seal(plaintext, to)
}
