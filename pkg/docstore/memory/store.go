// Package memory provides an in-memory implementation of docstore.Store.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/docvault/pkg/address"
	"github.com/marmos91/docvault/pkg/docstore"
)

// MemoryStore implements docstore.Store using in-memory maps.
//
// This implementation is suitable for:
//   - Testing and development environments
//   - Ephemeral registries where persistence is not required
//   - Acting as the authoritative store in single-process deployments
//
// Thread Safety:
// All operations are protected by a single read-write mutex, making the
// store safe for concurrent access from multiple goroutines. Update holds
// the write lock for the whole transaction, which serializes transactions
// and makes each one trivially atomic.
//
// Watch Semantics:
// Events are delivered best-effort to every open watcher with a small
// buffer. A slow watcher misses events rather than blocking a commit,
// matching the at-least-once, possibly-lossy contract of the interface.
type MemoryStore struct {
	mu         sync.RWMutex
	registries map[address.Address]*docstore.Registry
	documents  map[address.Address]*docstore.Document

	watchMu  sync.Mutex
	watchers map[int]chan docstore.Event
	nextID   int
	closed   bool
}

// Interface compliance check.
var _ docstore.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		registries: make(map[address.Address]*docstore.Registry),
		documents:  make(map[address.Address]*docstore.Document),
		watchers:   make(map[int]chan docstore.Event),
	}
}

// FetchRegistry returns the registry at addr.
func (s *MemoryStore) FetchRegistry(ctx context.Context, addr address.Address) (*docstore.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.registries[addr]
	if !ok {
		return nil, docstore.NewErrorAt(docstore.ErrNotFound, "registry not found", addr.String())
	}
	return reg.Clone(), nil
}

// FetchDocument returns the document at addr.
func (s *MemoryStore) FetchDocument(ctx context.Context, addr address.Address) (*docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[addr]
	if !ok {
		return nil, docstore.NewErrorAt(docstore.ErrNotFound, "document not found", addr.String())
	}
	return doc.Clone(), nil
}

// ListDocuments returns all documents matching the filter.
func (s *MemoryStore) ListDocuments(ctx context.Context, filter docstore.Filter) ([]docstore.StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []docstore.StoredDocument
	for addr, doc := range s.documents {
		if filter.Matches(doc) {
			out = append(out, docstore.StoredDocument{Address: addr, Document: doc.Clone()})
		}
	}
	return out, nil
}

// Update runs fn as a single atomic transaction under the write lock.
//
// Writes are buffered in the transaction and applied to the maps only when
// fn returns nil, so a failing transaction leaves no trace.
func (s *MemoryStore) Update(ctx context.Context, fn func(tx docstore.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	events := tx.commit()
	s.notify(events)
	return nil
}

// Watch returns a channel of best-effort change events.
func (s *MemoryStore) Watch(ctx context.Context) (<-chan docstore.Event, error) {
	s.watchMu.Lock()
	if s.closed {
		s.watchMu.Unlock()
		return nil, docstore.NewError(docstore.ErrUnavailable, "store is closed")
	}
	id := s.nextID
	s.nextID++
	ch := make(chan docstore.Event, 16)
	s.watchers[id] = ch
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		if w, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w)
		}
		s.watchMu.Unlock()
	}()

	return ch, nil
}

// Close shuts down the store and closes all watcher channels.
func (s *MemoryStore) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	return nil
}

// notify fans an event batch out to all watchers without blocking.
func (s *MemoryStore) notify(events []docstore.Event) {
	if len(events) == 0 {
		return
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for _, ch := range s.watchers {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				// Watcher buffer full: drop. Events are best-effort.
			}
		}
	}
}

// ============================================================================
// Transaction
// ============================================================================

// memoryTx buffers transaction writes until commit. The store's write lock
// is held for the transaction's lifetime, so reads through the buffer are
// consistent.
type memoryTx struct {
	store *MemoryStore

	putRegistries map[address.Address]*docstore.Registry
	putDocuments  map[address.Address]*docstore.Document
	delDocuments  map[address.Address]bool
}

func (tx *memoryTx) GetRegistry(addr address.Address) (*docstore.Registry, error) {
	if reg, ok := tx.putRegistries[addr]; ok {
		return reg.Clone(), nil
	}
	if reg, ok := tx.store.registries[addr]; ok {
		return reg.Clone(), nil
	}
	return nil, docstore.NewErrorAt(docstore.ErrNotFound, "registry not found", addr.String())
}

func (tx *memoryTx) PutRegistry(addr address.Address, reg *docstore.Registry) error {
	if reg == nil {
		return docstore.NewError(docstore.ErrInvalidArgument, "nil registry")
	}
	if tx.putRegistries == nil {
		tx.putRegistries = make(map[address.Address]*docstore.Registry)
	}
	tx.putRegistries[addr] = reg.Clone()
	return nil
}

func (tx *memoryTx) GetDocument(addr address.Address) (*docstore.Document, error) {
	if tx.delDocuments[addr] {
		return nil, docstore.NewErrorAt(docstore.ErrNotFound, "document not found", addr.String())
	}
	if doc, ok := tx.putDocuments[addr]; ok {
		return doc.Clone(), nil
	}
	if doc, ok := tx.store.documents[addr]; ok {
		return doc.Clone(), nil
	}
	return nil, docstore.NewErrorAt(docstore.ErrNotFound, "document not found", addr.String())
}

func (tx *memoryTx) PutDocument(addr address.Address, doc *docstore.Document) error {
	if doc == nil {
		return docstore.NewError(docstore.ErrInvalidArgument, "nil document")
	}
	if tx.putDocuments == nil {
		tx.putDocuments = make(map[address.Address]*docstore.Document)
	}
	delete(tx.delDocuments, addr)
	tx.putDocuments[addr] = doc.Clone()
	return nil
}

func (tx *memoryTx) DeleteDocument(addr address.Address) error {
	if _, err := tx.GetDocument(addr); err != nil {
		return err
	}
	if tx.delDocuments == nil {
		tx.delDocuments = make(map[address.Address]bool)
	}
	delete(tx.putDocuments, addr)
	tx.delDocuments[addr] = true
	return nil
}

// commit applies buffered writes to the store maps and returns the events
// to publish. Caller holds the store's write lock.
func (tx *memoryTx) commit() []docstore.Event {
	var events []docstore.Event

	for addr, reg := range tx.putRegistries {
		tx.store.registries[addr] = reg
		events = append(events, docstore.Event{Address: addr, Kind: docstore.EventPut})
	}
	for addr, doc := range tx.putDocuments {
		tx.store.documents[addr] = doc
		events = append(events, docstore.Event{Address: addr, Kind: docstore.EventPut})
	}
	for addr := range tx.delDocuments {
		delete(tx.store.documents, addr)
		events = append(events, docstore.Event{Address: addr, Kind: docstore.EventDelete})
	}
	return events
}
