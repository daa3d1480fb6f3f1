package docstore

import (
	"context"

	"github.com/marmos91/docvault/pkg/address"
	"github.com/marmos91/docvault/pkg/identity"
)

// ============================================================================
// Store Interface
// ============================================================================

// Store is the complete backing-store surface the registry core requires.
//
// Any store offering atomic keyed-record create/update/delete plus attribute
// filtering suffices; this module ships an in-memory implementation for tests
// and development and a BadgerDB implementation for persistence.
//
// Atomicity:
// All mutations run inside Update. The closure either fully commits (counter
// and record updated together) or not at all; no partial state is ever
// visible to other callers. Two concurrent Update calls against the same
// records are serialized by the implementation in an unspecified order.
//
// Aliasing:
// Fetch, list, and transaction reads return deep copies. Mutating a returned
// value never changes stored state without an explicit Put.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// FetchRegistry returns the registry stored at addr.
	//
	// Returns a StoreError with ErrNotFound if no registry exists there.
	// Callers use this as the first half of the two-step fetch-or-create
	// bootstrap: fetch, and only initialize on "not found".
	FetchRegistry(ctx context.Context, addr address.Address) (*Registry, error)

	// FetchDocument returns the document stored at addr.
	//
	// Returns a StoreError with ErrNotFound if no document exists there.
	FetchDocument(ctx context.Context, addr address.Address) (*Document, error)

	// ListDocuments returns all documents matching the filter, together
	// with their addresses. Order is unspecified but stable for a given
	// store state.
	ListDocuments(ctx context.Context, filter Filter) ([]StoredDocument, error)

	// Update runs fn inside a single atomic transaction.
	//
	// If fn returns an error, nothing is committed and the error is
	// returned unchanged (domain errors from the protocol pass through).
	// If fn returns nil, all writes commit together.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Watch returns a channel of best-effort change events.
	//
	// Events are emitted at-least-once after a committing transaction and
	// may be coalesced or redundant. The channel is closed when ctx is
	// cancelled or the store shuts down. Correctness must never depend on
	// receiving every event; Watch only exists to trigger refreshes.
	Watch(ctx context.Context) (<-chan Event, error)

	// Close releases store resources. The store must not be used after.
	Close() error
}

// Tx is the view of a store inside an Update transaction.
//
// Reads observe earlier writes in the same transaction. All errors other
// than ErrNotFound abort the transaction.
type Tx interface {
	GetRegistry(addr address.Address) (*Registry, error)
	PutRegistry(addr address.Address, reg *Registry) error

	GetDocument(addr address.Address) (*Document, error)
	PutDocument(addr address.Address, doc *Document) error

	// DeleteDocument removes the document at addr. Deleting a missing
	// document returns ErrNotFound.
	DeleteDocument(addr address.Address) error
}

// Filter selects documents in ListDocuments. Nil fields match everything;
// set fields are ANDed.
type Filter struct {
	// Owner matches documents owned by this identity.
	Owner *identity.Identity

	// SharedWith matches documents with a share entry for this identity.
	SharedWith *identity.Identity
}

// Matches reports whether doc satisfies the filter.
func (f Filter) Matches(doc *Document) bool {
	if f.Owner != nil && doc.Owner != *f.Owner {
		return false
	}
	if f.SharedWith != nil && doc.SharedWithIndex(*f.SharedWith) < 0 {
		return false
	}
	return true
}

// EventKind classifies a change event.
type EventKind int

const (
	// EventPut indicates a registry or document was created or updated.
	EventPut EventKind = iota

	// EventDelete indicates a document was deleted.
	EventDelete
)

// Event describes a committed change to a stored record.
type Event struct {
	// Address is the account address that changed.
	Address address.Address

	// Kind is the kind of change.
	Kind EventKind
}
