package badger

import "github.com/marmos91/docvault/pkg/address"

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so records are organized with prefixed keys:
//
//	Data Type   Prefix  Key Format        Value Type
//	=======================================================
//	Registry    "r:"    r:<address>       Registry (JSON)
//	Document    "d:"    d:<address>       Document (JSON)
//
// The <address> component is the raw 32-byte account address (see
// pkg/address), so keys are fixed-length and point lookups are O(1). Both
// prefixes are also used as subscription matches for the watch channel.

const (
	registryPrefix = "r:"
	documentPrefix = "d:"
)

// registryKey returns the database key for a registry address.
func registryKey(addr address.Address) []byte {
	return append([]byte(registryPrefix), addr.Bytes()...)
}

// documentKey returns the database key for a document address.
func documentKey(addr address.Address) []byte {
	return append([]byte(documentPrefix), addr.Bytes()...)
}

// addressFromKey recovers the account address from a database key.
// Returns false if the key is not a registry or document key.
func addressFromKey(key []byte) (address.Address, bool) {
	var addr address.Address
	if len(key) != len(registryPrefix)+address.Size {
		return addr, false
	}
	prefix := string(key[:len(registryPrefix)])
	if prefix != registryPrefix && prefix != documentPrefix {
		return addr, false
	}
	copy(addr[:], key[len(registryPrefix):])
	return addr, true
}
