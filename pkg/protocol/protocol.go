// Package protocol implements the access-control state machine over the
// document registry.
//
// Every mutating operation (initialize, create, share, revoke, close) runs
// as one atomic store transaction: the registry counter and the document
// record change together or not at all. The protocol layer is stateless per
// call — it holds no session state, performs no retries, and enforces every
// authorization check inside the transaction that acts on its result.
//
// Record lifecycle:
//
//	Nonexistent --CreateDocument--> Active --CloseDocument--> Closed
//
// Closed is terminal for the record, but the address becomes reusable: a new
// document with the same (owner, fileName) may be created afterwards.
package protocol

import (
	"context"
	"time"

	"github.com/marmos91/docvault/pkg/address"
	"github.com/marmos91/docvault/pkg/crypto"
	"github.com/marmos91/docvault/pkg/docstore"
	"github.com/marmos91/docvault/pkg/identity"
	"github.com/marmos91/docvault/pkg/metrics"
)

// Input length caps, carried over from the on-ledger account layout where
// record space is paid for up front.
const (
	MaxFileNameLen   = 100
	MaxFileTypeLen   = 50
	MaxCiphertextLen = 256
	MaxNonceLen      = 64
)

// AccessControl executes registry operations against a backing store.
//
// All methods are safe for concurrent use; atomicity is delegated to the
// store's transaction guarantee.
type AccessControl struct {
	store   docstore.Store
	now     func() time.Time
	metrics metrics.ProtocolMetrics
}

// Option configures an AccessControl.
type Option func(*AccessControl)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(ac *AccessControl) {
		ac.now = now
	}
}

// WithMetrics enables operation metrics collection.
func WithMetrics(m metrics.ProtocolMetrics) Option {
	return func(ac *AccessControl) {
		if m != nil {
			ac.metrics = m
		}
	}
}

// New creates an AccessControl over the given store.
func New(store docstore.Store, opts ...Option) *AccessControl {
	ac := &AccessControl{
		store:   store,
		now:     time.Now,
		metrics: metrics.NoopProtocolMetrics{},
	}
	for _, opt := range opts {
		opt(ac)
	}
	return ac
}

// observe records one completed operation.
func (ac *AccessControl) observe(operation string, start time.Time, err error) {
	ac.metrics.RecordOperation(operation, time.Since(start), err)
}

// ============================================================================
// Registry bootstrap
// ============================================================================

// InitializeRegistry creates the owner's document registry if it does not
// exist yet.
//
// Idempotent: if a registry already exists at the derived address this is a
// no-op success, not an error. Callers following the two-step bootstrap
// (FetchRegistry, then InitializeRegistry on not-found) and callers that
// blindly re-initialize both converge on the same state.
func (ac *AccessControl) InitializeRegistry(ctx context.Context, owner identity.Identity) (err error) {
	defer func(start time.Time) { ac.observe("initialize_registry", start, err) }(time.Now())

	if owner.IsZero() {
		return docstore.NewError(docstore.ErrInvalidArgument, "owner identity is required")
	}

	addr := docstore.RegistryAddress(owner)
	return ac.store.Update(ctx, func(tx docstore.Tx) error {
		_, err := tx.GetRegistry(addr)
		if err == nil {
			// Already initialized.
			return nil
		}
		if !docstore.IsNotFound(err) {
			return err
		}
		return tx.PutRegistry(addr, &docstore.Registry{Owner: owner, DocumentCount: 0})
	})
}

// FetchRegistry returns the owner's registry, or a not-found store error if
// it was never initialized. This is the first half of the explicit
// fetch-or-create bootstrap contract.
func (ac *AccessControl) FetchRegistry(ctx context.Context, owner identity.Identity) (*docstore.Registry, error) {
	return ac.store.FetchRegistry(ctx, docstore.RegistryAddress(owner))
}

// ============================================================================
// Document lifecycle
// ============================================================================

// CreateDocument creates a new document record owned by owner.
//
// Requirements enforced in one transaction:
//   - the owner's registry exists (ErrNotFound otherwise)
//   - no record exists at the derived address (ErrAlreadyExists — the owner
//     must pick a different file name)
//
// On success the record is created with an empty share list and the
// registry's document count is incremented atomically with it. Returns the
// new record's address.
func (ac *AccessControl) CreateDocument(
	ctx context.Context,
	owner identity.Identity,
	fileName, fileType string,
	ownerPointer crypto.SealedPointer,
) (addr address.Address, err error) {
	defer func(start time.Time) { ac.observe("create_document", start, err) }(time.Now())

	var zero address.Address

	if owner.IsZero() {
		return zero, docstore.NewError(docstore.ErrInvalidArgument, "owner identity is required")
	}
	if fileName == "" || len(fileName) > MaxFileNameLen {
		return zero, docstore.NewError(docstore.ErrInvalidArgument, "file name must be 1-100 bytes")
	}
	if len(fileType) > MaxFileTypeLen {
		return zero, docstore.NewError(docstore.ErrInvalidArgument, "file type must be at most 50 bytes")
	}
	if err := validatePointer(ownerPointer); err != nil {
		return zero, err
	}

	regAddr := docstore.RegistryAddress(owner)
	docAddr := docstore.DocumentAddress(owner, fileName)

	err = ac.store.Update(ctx, func(tx docstore.Tx) error {
		reg, err := tx.GetRegistry(regAddr)
		if err != nil {
			if docstore.IsNotFound(err) {
				return docstore.NewErrorAt(docstore.ErrNotFound,
					"registry not initialized for owner", regAddr.String())
			}
			return err
		}

		if _, err := tx.GetDocument(docAddr); err == nil {
			return docstore.NewErrorAt(docstore.ErrAlreadyExists,
				"document already exists with this file name", docAddr.String())
		} else if !docstore.IsNotFound(err) {
			return err
		}

		doc := &docstore.Document{
			Owner:        owner,
			FileName:     fileName,
			FileType:     fileType,
			OwnerPointer: ownerPointer,
			CreatedAt:    ac.now().Unix(),
			SharedWith:   nil,
		}
		if err := tx.PutDocument(docAddr, doc); err != nil {
			return err
		}

		reg.DocumentCount++
		return tx.PutRegistry(regAddr, reg)
	})
	if err != nil {
		return zero, err
	}
	return docAddr, nil
}

// FetchDocument returns the document at addr.
func (ac *AccessControl) FetchDocument(ctx context.Context, addr address.Address) (*docstore.Document, error) {
	return ac.store.FetchDocument(ctx, addr)
}

// ShareDocument grants recipient access to the document at recordAddr by
// recording a content pointer re-encrypted for them.
//
// Only the record's owner may share (ErrNotOwner otherwise; no state
// change). Sharing with the owner itself is rejected.
//
// Re-share semantics: sharing with a recipient that already has an entry
// replaces that entry in place — the pointer and timestamp are refreshed and
// the entry keeps its position in the list. This upsert keeps the share list
// free of duplicates, so revocation is always unambiguous.
func (ac *AccessControl) ShareDocument(
	ctx context.Context,
	recordAddr address.Address,
	caller identity.Identity,
	recipient identity.Identity,
	recipientPointer crypto.SealedPointer,
) (err error) {
	defer func(start time.Time) { ac.observe("share_document", start, err) }(time.Now())

	if recipient.IsZero() {
		return docstore.NewError(docstore.ErrInvalidArgument, "recipient identity is required")
	}
	if err := validatePointer(recipientPointer); err != nil {
		return err
	}

	return ac.store.Update(ctx, func(tx docstore.Tx) error {
		doc, err := tx.GetDocument(recordAddr)
		if err != nil {
			return err
		}
		if doc.Owner != caller {
			return docstore.NewErrorAt(docstore.ErrNotOwner,
				"only the document owner may share", recordAddr.String())
		}
		if recipient == doc.Owner {
			return docstore.NewError(docstore.ErrInvalidArgument,
				"cannot share a document with its owner")
		}

		entry := docstore.ShareEntry{
			Recipient: recipient,
			Pointer:   recipientPointer,
			SharedAt:  ac.now().Unix(),
		}
		if i := doc.SharedWithIndex(recipient); i >= 0 {
			doc.SharedWith[i] = entry
		} else {
			doc.SharedWith = append(doc.SharedWith, entry)
		}
		return tx.PutDocument(recordAddr, doc)
	})
}

// RevokeAccess removes recipient's share entry from the document at
// recordAddr.
//
// Only the record's owner may revoke (ErrNotOwner otherwise). Revoking a
// recipient with no entry is an error (ErrRecipientNotFound), not a no-op,
// so a caller retrying a revoke after an ambiguous outcome learns whether
// the earlier attempt applied.
//
// The effect is immediate and exclusive: once this returns, no entry for the
// recipient remains, and every later fetch agrees until the owner shares
// with them again.
func (ac *AccessControl) RevokeAccess(
	ctx context.Context,
	recordAddr address.Address,
	caller identity.Identity,
	recipient identity.Identity,
) (err error) {
	defer func(start time.Time) { ac.observe("revoke_access", start, err) }(time.Now())

	return ac.store.Update(ctx, func(tx docstore.Tx) error {
		doc, err := tx.GetDocument(recordAddr)
		if err != nil {
			return err
		}
		if doc.Owner != caller {
			return docstore.NewErrorAt(docstore.ErrNotOwner,
				"only the document owner may revoke access", recordAddr.String())
		}

		i := doc.SharedWithIndex(recipient)
		if i < 0 {
			return docstore.NewErrorAt(docstore.ErrRecipientNotFound,
				"recipient has no share entry", recordAddr.String())
		}

		// Remove preserving insertion order of the remaining entries.
		doc.SharedWith = append(doc.SharedWith[:i], doc.SharedWith[i+1:]...)
		return tx.PutDocument(recordAddr, doc)
	})
}

// CloseDocument deletes the document at recordAddr and decrements the
// owner's document count, atomically.
//
// Only the record's owner may close (ErrNotOwner). Closing a nonexistent
// record is ErrNotFound and never decrements the counter, which is what
// keeps the count equal to the number of live records under retries: a
// retried close that already applied fails loudly instead of double
// decrementing.
func (ac *AccessControl) CloseDocument(
	ctx context.Context,
	recordAddr address.Address,
	caller identity.Identity,
) (err error) {
	defer func(start time.Time) { ac.observe("close_document", start, err) }(time.Now())

	return ac.store.Update(ctx, func(tx docstore.Tx) error {
		doc, err := tx.GetDocument(recordAddr)
		if err != nil {
			return err
		}
		if doc.Owner != caller {
			return docstore.NewErrorAt(docstore.ErrNotOwner,
				"only the document owner may close", recordAddr.String())
		}

		if err := tx.DeleteDocument(recordAddr); err != nil {
			return err
		}

		regAddr := docstore.RegistryAddress(doc.Owner)
		reg, err := tx.GetRegistry(regAddr)
		if err != nil {
			return err
		}
		// The counter can never go negative: the record existed, so a
		// consistent registry has count >= 1. Guard anyway rather than
		// wrap around on a corrupted registry.
		if reg.DocumentCount > 0 {
			reg.DocumentCount--
		}
		return tx.PutRegistry(regAddr, reg)
	})
}

// validatePointer rejects malformed or oversized sealed pointers.
func validatePointer(p crypto.SealedPointer) error {
	if len(p.Ciphertext) == 0 {
		return docstore.NewError(docstore.ErrInvalidArgument, "pointer ciphertext is required")
	}
	if len(p.Ciphertext) > MaxCiphertextLen {
		return docstore.NewError(docstore.ErrInvalidArgument, "pointer ciphertext too large")
	}
	if len(p.Nonce) == 0 || len(p.Nonce) > MaxNonceLen {
		return docstore.NewError(docstore.ErrInvalidArgument, "pointer nonce must be 1-64 bytes")
	}
	return nil
}
