// Package vault ties the crypto, content, and registry layers into a
// high-level document API.
//
// Upload encrypts a content identifier under the caller's session key and
// registers it; Open walks the path back: fetch the record, decrypt whichever
// pointer the caller may read, fetch the content. The registry never sees
// plaintext identifiers and the content store never sees registry state.
package vault

import (
	"context"
	"fmt"

	"github.com/marmos91/docvault/pkg/address"
	"github.com/marmos91/docvault/pkg/content"
	"github.com/marmos91/docvault/pkg/crypto"
	"github.com/marmos91/docvault/pkg/docstore"
	"github.com/marmos91/docvault/pkg/identity"
	"github.com/marmos91/docvault/pkg/protocol"
)

// Vault combines an access-control protocol with a content store.
//
// Thread Safety:
// Safe for concurrent use; all state lives in the underlying stores.
type Vault struct {
	protocol *protocol.AccessControl
	content  content.ContentStore
}

// New creates a Vault over the given protocol and content store.
func New(ac *protocol.AccessControl, store content.ContentStore) *Vault {
	return &Vault{protocol: ac, content: store}
}

// Upload stores data in the content store, seals its identifier under the
// session key, and registers the document. Returns the record address.
//
// The caller's registry must already exist (see
// protocol.AccessControl.InitializeRegistry). If registration fails the
// uploaded blob is left in place: content is addressed by hash, so an
// orphaned blob is harmless and a retried upload reuses it.
func (v *Vault) Upload(
	ctx context.Context,
	session *crypto.Session,
	fileName, fileType string,
	data []byte,
) (address.Address, error) {
	var zero address.Address

	id, err := v.content.Put(ctx, data)
	if err != nil {
		return zero, fmt.Errorf("failed to store content: %w", err)
	}

	pointer, err := crypto.Seal([]byte(id), session.Key())
	if err != nil {
		return zero, fmt.Errorf("failed to seal content pointer: %w", err)
	}

	addr, err := v.protocol.CreateDocument(ctx, session.Identity(), fileName, fileType, pointer)
	if err != nil {
		return zero, err
	}
	return addr, nil
}

// Open fetches the record at recordAddr, decrypts the pointer the session
// holder is entitled to, and returns the content bytes.
//
// The owner reads through the owner pointer; anyone else must hold a share
// entry (ErrRecipientNotFound otherwise). A pointer sealed under a different
// key fails with crypto.ErrDecryptionFailed.
func (v *Vault) Open(
	ctx context.Context,
	session *crypto.Session,
	recordAddr address.Address,
) ([]byte, error) {
	doc, err := v.protocol.FetchDocument(ctx, recordAddr)
	if err != nil {
		return nil, err
	}

	pointer, err := v.pointerFor(doc, session.Identity(), recordAddr)
	if err != nil {
		return nil, err
	}

	id, err := crypto.Open(pointer, session.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to open content pointer: %w", err)
	}

	data, err := v.content.Get(ctx, content.ContentID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	return data, nil
}

// pointerFor picks the sealed pointer caller may decrypt on doc.
func (v *Vault) pointerFor(doc *docstore.Document, caller identity.Identity, recordAddr address.Address) (crypto.SealedPointer, error) {
	if doc.Owner == caller {
		return doc.OwnerPointer, nil
	}
	if i := doc.SharedWithIndex(caller); i >= 0 {
		return doc.SharedWith[i].Pointer, nil
	}
	return crypto.SealedPointer{}, docstore.NewErrorAt(docstore.ErrRecipientNotFound,
		"caller has no access to this document", recordAddr.String())
}

// Share grants recipient access to the document at recordAddr.
//
// The owner's pointer is opened under the session key and resealed under
// recipientKey, so both entries reference the same content. How recipientKey
// is obtained is up to the caller; this layer performs no key exchange.
// Sharing with a recipient that already holds access replaces their entry.
func (v *Vault) Share(
	ctx context.Context,
	session *crypto.Session,
	recordAddr address.Address,
	recipient identity.Identity,
	recipientKey crypto.SymmetricKey,
) error {
	doc, err := v.protocol.FetchDocument(ctx, recordAddr)
	if err != nil {
		return err
	}
	if doc.Owner != session.Identity() {
		return docstore.NewErrorAt(docstore.ErrNotOwner,
			"only the document owner may share", recordAddr.String())
	}

	pointer, err := crypto.Reseal(doc.OwnerPointer, session.Key(), recipientKey)
	if err != nil {
		return fmt.Errorf("failed to reseal content pointer: %w", err)
	}

	return v.protocol.ShareDocument(ctx, recordAddr, session.Identity(), recipient, pointer)
}

// Revoke removes recipient's access to the document at recordAddr.
//
// Revocation is registry-side only: a recipient who already decrypted the
// pointer may retain the content identifier, so revoke controls future
// registry reads, not copies already made.
func (v *Vault) Revoke(
	ctx context.Context,
	session *crypto.Session,
	recordAddr address.Address,
	recipient identity.Identity,
) error {
	return v.protocol.RevokeAccess(ctx, recordAddr, session.Identity(), recipient)
}

// Remove closes the document record at recordAddr.
//
// The content blob is left in the content store: records never own content
// lifecycle, and another record may reference the same bytes.
func (v *Vault) Remove(
	ctx context.Context,
	session *crypto.Session,
	recordAddr address.Address,
) error {
	return v.protocol.CloseDocument(ctx, recordAddr, session.Identity())
}
