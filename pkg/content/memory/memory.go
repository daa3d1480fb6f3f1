// Package memory provides an in-memory implementation of content.ContentStore.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/marmos91/docvault/pkg/content"
)

// MemoryContentStore implements ContentStore using an in-memory map.
//
// Suitable for testing and development; everything is lost when the process
// exits.
//
// Thread Safety:
// All operations are protected by a read-write mutex.
type MemoryContentStore struct {
	mu    sync.RWMutex
	blobs map[content.ContentID][]byte
}

// Interface compliance check.
var _ content.ContentStore = (*MemoryContentStore)(nil)

// NewMemoryContentStore creates an empty in-memory content store.
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{
		blobs: make(map[content.ContentID][]byte),
	}
}

// Put stores data under its content-derived identifier.
func (s *MemoryContentStore) Put(ctx context.Context, data []byte) (content.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := content.IDFor(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[id]; !exists {
		s.blobs[id] = append([]byte(nil), data...)
	}
	return id, nil
}

// Get returns the bytes stored under id.
func (s *MemoryContentStore) Get(ctx context.Context, id content.ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[id]
	if !ok {
		return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Has reports whether content exists for id.
func (s *MemoryContentStore) Has(ctx context.Context, id content.ContentID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[id]
	return ok, nil
}

// Delete removes the content stored under id. Idempotent.
func (s *MemoryContentStore) Delete(ctx context.Context, id content.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryContentStore) Close() error {
	return nil
}
