// Package badger provides a BadgerDB-backed implementation of docstore.Store.
package badger

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
	"github.com/marmos91/docvault/pkg/address"
	"github.com/marmos91/docvault/pkg/docstore"
)

// BadgerStore implements docstore.Store using BadgerDB for persistence.
//
// This implementation is suitable for:
//   - Production deployments where records must survive restarts
//   - Acting as the authoritative store behind a network front end
//
// Atomicity:
// Every Update runs inside a single BadgerDB read-write transaction, so the
// registry counter and the document record commit together or not at all.
// Badger detects write conflicts between concurrent transactions; conflicted
// transactions are retried a bounded number of times before surfacing as
// ErrUnavailable, which callers treat like any other transient store failure.
//
// Watch:
// Change events ride on badger's key subscription (DB.Subscribe) over the
// registry and document key prefixes. Delivery is best-effort and may be
// coalesced, matching the Store contract.
type BadgerStore struct {
	db *badger.DB
}

// Interface compliance check.
var _ docstore.Store = (*BadgerStore)(nil)

// conflictRetries bounds transparent retries of conflicted transactions.
const conflictRetries = 3

// Config holds BadgerDB store options.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory runs badger without touching disk. Useful for tests.
	InMemory bool

	// SyncWrites makes every commit fsync. Slower, but a crash cannot
	// lose acknowledged transactions.
	SyncWrites bool
}

// NewBadgerStore opens (creating if necessary) a badger-backed store.
func NewBadgerStore(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger store: path is required")
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger store: failed to open database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// FetchRegistry returns the registry at addr.
func (s *BadgerStore) FetchRegistry(ctx context.Context, addr address.Address) (*docstore.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reg *docstore.Registry
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		reg, err = getRegistry(txn, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// FetchDocument returns the document at addr.
func (s *BadgerStore) FetchDocument(ctx context.Context, addr address.Address) (*docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc *docstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = getDocument(txn, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments scans the document prefix and returns all records matching
// the filter.
func (s *BadgerStore) ListDocuments(ctx context.Context, filter docstore.Filter) ([]docstore.StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []docstore.StoredDocument
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			addr, ok := addressFromKey(item.KeyCopy(nil))
			if !ok {
				continue
			}

			var doc *docstore.Document
			err := item.Value(func(val []byte) error {
				var err error
				doc, err = unmarshalDocument(val)
				return err
			})
			if err != nil {
				return docstore.NewErrorAt(docstore.ErrIOError, "failed to read document: "+err.Error(), addr.String())
			}

			if filter.Matches(doc) {
				out = append(out, docstore.StoredDocument{Address: addr, Document: doc})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update runs fn inside a single badger read-write transaction, retrying a
// bounded number of times on write conflicts.
func (s *BadgerStore) Update(ctx context.Context, fn func(tx docstore.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= conflictRetries; attempt++ {
		err := s.db.Update(func(txn *badger.Txn) error {
			return fn(&badgerTx{txn: txn})
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return docstore.NewError(docstore.ErrUnavailable,
		"transaction conflict persisted after retries: "+lastErr.Error())
}

// Watch subscribes to changes under the registry and document prefixes and
// republishes them as store events.
func (s *BadgerStore) Watch(ctx context.Context) (<-chan docstore.Event, error) {
	ch := make(chan docstore.Event, 16)

	matches := []pb.Match{
		{Prefix: []byte(registryPrefix)},
		{Prefix: []byte(documentPrefix)},
	}

	go func() {
		defer close(ch)

		// Subscribe blocks until ctx is cancelled or the DB closes.
		_ = s.db.Subscribe(ctx, func(kvs *badger.KVList) error {
			for _, kv := range kvs.Kv {
				addr, ok := addressFromKey(kv.Key)
				if !ok {
					continue
				}
				kind := docstore.EventPut
				if len(kv.Value) == 0 {
					kind = docstore.EventDelete
				}
				select {
				case ch <- docstore.Event{Address: addr, Kind: kind}:
				default:
					// Receiver is slow: drop. Events are best-effort.
				}
			}
			return nil
		}, matches)
	}()

	return ch, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger store: close: %w", err)
	}
	return nil
}

// ============================================================================
// Transaction
// ============================================================================

// badgerTx adapts a badger transaction to the docstore.Tx interface.
type badgerTx struct {
	txn *badger.Txn
}

func (tx *badgerTx) GetRegistry(addr address.Address) (*docstore.Registry, error) {
	return getRegistry(tx.txn, addr)
}

func (tx *badgerTx) PutRegistry(addr address.Address, reg *docstore.Registry) error {
	if reg == nil {
		return docstore.NewError(docstore.ErrInvalidArgument, "nil registry")
	}
	data, err := marshalRegistry(reg)
	if err != nil {
		return docstore.NewErrorAt(docstore.ErrIOError, err.Error(), addr.String())
	}
	if err := tx.txn.Set(registryKey(addr), data); err != nil {
		return mapBadgerError(err, addr)
	}
	return nil
}

func (tx *badgerTx) GetDocument(addr address.Address) (*docstore.Document, error) {
	return getDocument(tx.txn, addr)
}

func (tx *badgerTx) PutDocument(addr address.Address, doc *docstore.Document) error {
	if doc == nil {
		return docstore.NewError(docstore.ErrInvalidArgument, "nil document")
	}
	data, err := marshalDocument(doc)
	if err != nil {
		return docstore.NewErrorAt(docstore.ErrIOError, err.Error(), addr.String())
	}
	if err := tx.txn.Set(documentKey(addr), data); err != nil {
		return mapBadgerError(err, addr)
	}
	return nil
}

func (tx *badgerTx) DeleteDocument(addr address.Address) error {
	// Deleting a missing document is an error at the contract level, so
	// existence is checked first.
	if _, err := getDocument(tx.txn, addr); err != nil {
		return err
	}
	if err := tx.txn.Delete(documentKey(addr)); err != nil {
		return mapBadgerError(err, addr)
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func getRegistry(txn *badger.Txn, addr address.Address) (*docstore.Registry, error) {
	item, err := txn.Get(registryKey(addr))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, docstore.NewErrorAt(docstore.ErrNotFound, "registry not found", addr.String())
	}
	if err != nil {
		return nil, mapBadgerError(err, addr)
	}

	var reg *docstore.Registry
	err = item.Value(func(val []byte) error {
		reg, err = unmarshalRegistry(val)
		return err
	})
	if err != nil {
		return nil, docstore.NewErrorAt(docstore.ErrIOError, "failed to read registry: "+err.Error(), addr.String())
	}
	return reg, nil
}

func getDocument(txn *badger.Txn, addr address.Address) (*docstore.Document, error) {
	item, err := txn.Get(documentKey(addr))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, docstore.NewErrorAt(docstore.ErrNotFound, "document not found", addr.String())
	}
	if err != nil {
		return nil, mapBadgerError(err, addr)
	}

	var doc *docstore.Document
	err = item.Value(func(val []byte) error {
		doc, err = unmarshalDocument(val)
		return err
	})
	if err != nil {
		return nil, docstore.NewErrorAt(docstore.ErrIOError, "failed to read document: "+err.Error(), addr.String())
	}
	return doc, nil
}

// mapBadgerError converts infrastructure errors to store errors, keeping
// domain errors untouched.
func mapBadgerError(err error, addr address.Address) error {
	var se *docstore.StoreError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, badger.ErrConflict) || errors.Is(err, badger.ErrDBClosed) || errors.Is(err, badger.ErrBlockedWrites) {
		return docstore.NewErrorAt(docstore.ErrUnavailable, err.Error(), addr.String())
	}
	return docstore.NewErrorAt(docstore.ErrIOError, err.Error(), addr.String())
}
