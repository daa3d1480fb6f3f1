// Package content defines the content store collaborator: the external,
// untrusted blob store the registry points into.
//
// The registry core never stores file bytes — it stores encrypted content
// identifiers. The content store is addressed by those identifiers through a
// minimal put/get interface, and everything it holds is ciphertext the caller
// encrypted before upload.
//
// Content identifiers are the lowercase-hex SHA-256 of the stored bytes
// (content addressing). The registry treats them as opaque strings; only
// this package computes or interprets them. Content addressing gives
// idempotent puts (re-uploading the same bytes is a no-op) and lets any
// holder of the bytes verify the identifier.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ContentID is an opaque identifier for a blob in the content store.
type ContentID string

// ErrContentNotFound indicates the requested content does not exist in the
// store.
var ErrContentNotFound = errors.New("content not found")

// IDFor computes the content identifier for the given bytes.
func IDFor(data []byte) ContentID {
	sum := sha256.Sum256(data)
	return ContentID(hex.EncodeToString(sum[:]))
}

// ContentStore provides storage-agnostic blob storage addressed by content
// identifier.
//
// Design principles:
//   - Storage-agnostic: memory, local filesystem, and S3 backends ship with
//     this module; anything with keyed put/get works.
//   - Context-aware: all operations respect context cancellation.
//   - No access control: the store trusts callers; confidentiality comes
//     from the blobs being encrypted before Put, never from the store.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// Concurrent puts of the same bytes target the same ID and are idempotent.
type ContentStore interface {
	// Put stores data and returns its content identifier.
	//
	// Storing bytes that already exist is a successful no-op returning
	// the same identifier.
	Put(ctx context.Context, data []byte) (ContentID, error)

	// Get returns the bytes stored under id.
	//
	// Returns ErrContentNotFound (wrapped) if the id is unknown.
	Get(ctx context.Context, id ContentID) ([]byte, error)

	// Has reports whether content exists for id.
	Has(ctx context.Context, id ContentID) (bool, error)

	// Delete removes the content stored under id. Deleting missing
	// content is a no-op: delete is used for cleanup, and cleanup must
	// be idempotent.
	Delete(ctx context.Context, id ContentID) error

	// Close releases store resources.
	Close() error
}
