// Package docstore defines the persistent data model of the encrypted
// document registry and the backing store contract it is stored in.
//
// The model mirrors the account layout of the on-ledger original:
//
//	Registry[ownerAddress]  -> {owner, documentCount}
//	Document[recordAddress] -> {owner, fileName, fileType, ownerPointer,
//	                            createdAt, sharedWith[]}
//
// Addresses are derived deterministically (see pkg/address):
//
//	registry: Derive("user_documents", owner)
//	document: Derive("document", owner, fileName)
//
// The store itself enforces no business rules beyond keyed atomicity; all
// authorization and counter discipline lives in pkg/protocol.
package docstore

import (
	"github.com/marmos91/docvault/pkg/address"
	"github.com/marmos91/docvault/pkg/crypto"
	"github.com/marmos91/docvault/pkg/identity"
)

// Namespace seeds for address derivation. These are part of the persisted
// contract: changing them moves every account.
const (
	RegistryNamespace = "user_documents"
	DocumentNamespace = "document"
)

// RegistryAddress returns the address of the owner's document registry.
func RegistryAddress(owner identity.Identity) address.Address {
	return address.Derive(RegistryNamespace, owner.Bytes())
}

// DocumentAddress returns the address of the record for (owner, fileName).
func DocumentAddress(owner identity.Identity, fileName string) address.Address {
	return address.Derive(DocumentNamespace, owner.Bytes(), []byte(fileName))
}

// Registry is the per-owner account tracking how many document records the
// owner holds. It is created lazily on first use and never deleted in normal
// operation.
type Registry struct {
	// Owner is the identity this registry belongs to. Immutable.
	Owner identity.Identity `json:"owner"`

	// DocumentCount is incremented on document creation and decremented on
	// close. Invariant: always equals the number of live documents whose
	// owner is Owner. Never negative.
	DocumentCount uint64 `json:"document_count"`
}

// Document is the per-file record: ownership, metadata, the owner-encrypted
// content pointer, and the per-recipient shares.
type Document struct {
	// Owner is the only identity allowed to mutate this record. Immutable.
	Owner identity.Identity `json:"owner"`

	// FileName and FileType are set at creation and immutable thereafter;
	// there is no rename operation.
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`

	// OwnerPointer is the content identifier encrypted under the owner's
	// symmetric key.
	OwnerPointer crypto.SealedPointer `json:"owner_pointer"`

	// CreatedAt is the Unix timestamp of record creation.
	CreatedAt int64 `json:"created_at"`

	// SharedWith lists per-recipient grants in insertion order. At most one
	// entry per recipient (the protocol upserts on re-share).
	SharedWith []ShareEntry `json:"shared_with"`
}

// ShareEntry grants one recipient access to the document's content via an
// independently re-encrypted content pointer.
type ShareEntry struct {
	// Recipient is the identity granted access.
	Recipient identity.Identity `json:"recipient"`

	// Pointer is the same content identifier as the document's OwnerPointer,
	// re-encrypted under a key the recipient can derive. Sharing never
	// changes which blob is referenced.
	Pointer crypto.SealedPointer `json:"pointer"`

	// SharedAt is the Unix timestamp the grant was made. Immutable for the
	// lifetime of the entry; refreshed when a re-share replaces it.
	SharedAt int64 `json:"shared_at"`
}

// SharedWithIndex returns the index of the entry for recipient, or -1.
func (d *Document) SharedWithIndex(recipient identity.Identity) int {
	for i, entry := range d.SharedWith {
		if entry.Recipient == recipient {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the document. Stores hand out clones so that
// callers can never alias store-internal state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.OwnerPointer = d.OwnerPointer.Clone()
	if d.SharedWith != nil {
		out.SharedWith = make([]ShareEntry, len(d.SharedWith))
		for i, entry := range d.SharedWith {
			out.SharedWith[i] = entry
			out.SharedWith[i].Pointer = entry.Pointer.Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	out := *r
	return &out
}

// StoredDocument pairs a document with the address it is stored at, as
// returned by list queries.
type StoredDocument struct {
	Address  address.Address
	Document *Document
}
