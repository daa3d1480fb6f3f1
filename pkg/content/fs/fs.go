// Package fs provides a local-filesystem implementation of
// content.ContentStore.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marmos91/docvault/pkg/content"
)

// FSContentStore implements ContentStore using the local filesystem.
//
// Blobs are stored under basePath in a two-level fanout derived from the
// content identifier (e.g. "ab/cd/abcd1234...") to keep directory sizes
// manageable for large stores.
//
// Writes go to a temporary file in the same directory followed by an atomic
// rename, so a crash mid-write never leaves a partially written blob at the
// final path.
//
// Thread Safety:
// Filesystem operations are thread-safe at the OS level. Because content is
// addressed by its hash, concurrent puts of the same bytes write identical
// data and the last rename wins harmlessly.
type FSContentStore struct {
	basePath string
}

// Interface compliance check.
var _ content.ContentStore = (*FSContentStore)(nil)

// NewFSContentStore creates a filesystem content store rooted at basePath,
// creating the directory if needed.
func NewFSContentStore(ctx context.Context, basePath string) (*FSContentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if basePath == "" {
		return nil, fmt.Errorf("fs content store: base path is required")
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSContentStore{basePath: basePath}, nil
}

// blobPath returns the fanout path for a content identifier. Identifiers are
// 64 hex characters; anything else maps to no path so garbage input can never
// escape basePath.
func (s *FSContentStore) blobPath(id content.ContentID) (string, bool) {
	name := string(id)
	if len(name) != 64 {
		return "", false
	}
	for _, c := range name {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return "", false
		}
	}
	return filepath.Join(s.basePath, name[0:2], name[2:4], name), true
}

// Put stores data under its content-derived identifier.
func (s *FSContentStore) Put(ctx context.Context, data []byte) (content.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := content.IDFor(data)
	path, _ := s.blobPath(id)

	// Existing blob with the same hash already holds these bytes.
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to finalize blob: %w", err)
	}
	return id, nil
}

// Get returns the bytes stored under id.
func (s *FSContentStore) Get(ctx context.Context, id content.ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ok := s.blobPath(id)
	if !ok {
		return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Has reports whether content exists for id.
func (s *FSContentStore) Has(ctx context.Context, id content.ContentID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, ok := s.blobPath(id)
	if !ok {
		return false, nil
	}
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat blob: %w", err)
	}
	return true, nil
}

// Delete removes the content stored under id. Idempotent.
func (s *FSContentStore) Delete(ctx context.Context, id content.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, ok := s.blobPath(id)
	if !ok {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Close is a no-op for the filesystem store.
func (s *FSContentStore) Close() error {
	return nil
}
