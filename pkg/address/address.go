// Package address derives deterministic account addresses from structured
// inputs.
//
// Every record in the registry lives at an address computed from a namespace
// and a sequence of byte-string parts. Any party that knows the inputs (owner,
// recipient, or auditor) can recompute the address without a lookup table, and
// the address is stable across sessions and processes.
//
// Derivation uses SHA-256 over the namespace and parts with 8-byte big-endian
// length prefixes. The prefixes make the encoding unambiguous: without them,
// ("a","bc") and ("ab","c") would concatenate to the same bytes and collide.
package address

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Size is the length of an address in bytes.
const Size = sha256.Size

// Address is a deterministic, collision-resistant account address.
//
// Addresses are comparable and usable as map keys. The zero value is not a
// valid address of any record.
type Address [Size]byte

// Derive computes the address for the given namespace and parts.
//
// The same inputs always yield the same address; different inputs yield
// different addresses with overwhelming probability (SHA-256 collision
// resistance). Each component is length-prefixed before hashing so that
// part boundaries cannot be shifted to produce a collision.
func Derive(namespace string, parts ...[]byte) Address {
	h := sha256.New()

	var lenBuf [8]byte
	writePart := func(p []byte) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}

	writePart([]byte(namespace))
	for _, p := range parts {
		writePart(p)
	}

	var addr Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// String returns the lowercase hex encoding of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns the address as a byte slice (a copy is not made; callers
// must not modify the result).
func (a Address) Bytes() []byte {
	return a[:]
}

// MarshalText encodes the address as lowercase hex.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a hex address produced by MarshalText.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Parse decodes a lowercase hex address string produced by String.
func Parse(s string) (Address, error) {
	var addr Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return addr, err
	}
	if len(b) != Size {
		return addr, errInvalidLength
	}
	copy(addr[:], b)
	return addr, nil
}
