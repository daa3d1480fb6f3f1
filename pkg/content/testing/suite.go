// Package testing provides a reusable test suite for content.ContentStore
// implementations.
package testing

import (
	"bytes"
	"context"
	"testing"

	"github.com/marmos91/docvault/pkg/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite exercises the ContentStore contract. It tests the interface
// contract, not implementation details, making it reusable across
// implementations (memory, filesystem, S3).
//
// Usage:
//
//	func TestMemoryContentStore(t *testing.T) {
//	    suite := &contenttesting.StoreTestSuite{
//	        NewStore: func(t *testing.T) content.ContentStore {
//	            return memory.NewMemoryContentStore()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh ContentStore for each test. The suite
	// closes the store via t.Cleanup.
	NewStore func(t *testing.T) content.ContentStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("PutGetRoundTrip", suite.testPutGetRoundTrip)
	t.Run("PutIsIdempotent", suite.testPutIsIdempotent)
	t.Run("IDIsContentDerived", suite.testIDIsContentDerived)
	t.Run("GetMissing", suite.testGetMissing)
	t.Run("Has", suite.testHas)
	t.Run("Delete", suite.testDelete)
	t.Run("DeleteMissingIsNoop", suite.testDeleteMissingIsNoop)
	t.Run("EmptyContent", suite.testEmptyContent)
}

func (suite *StoreTestSuite) newStore(t *testing.T) content.ContentStore {
	t.Helper()
	store := suite.NewStore(t)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func (suite *StoreTestSuite) testPutGetRoundTrip(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	data := []byte("encrypted document bytes")
	id, err := store.Put(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, content.IDFor(data), id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func (suite *StoreTestSuite) testPutIsIdempotent(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	data := []byte("same bytes twice")
	id1, err := store.Put(ctx, data)
	require.NoError(t, err)
	id2, err := store.Put(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	got, err := store.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func (suite *StoreTestSuite) testIDIsContentDerived(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	id1, err := store.Put(ctx, []byte("one"))
	require.NoError(t, err)
	id2, err := store.Put(ctx, []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func (suite *StoreTestSuite) testGetMissing(t *testing.T) {
	store := suite.newStore(t)

	_, err := store.Get(context.Background(), content.ContentID(bytes.Repeat([]byte("0"), 64)))
	assert.ErrorIs(t, err, content.ErrContentNotFound)
}

func (suite *StoreTestSuite) testHas(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, []byte("present"))
	require.NoError(t, err)

	ok, err := store.Has(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Has(ctx, content.ContentID(bytes.Repeat([]byte("f"), 64)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, []byte("doomed"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, content.ErrContentNotFound)
}

func (suite *StoreTestSuite) testDeleteMissingIsNoop(t *testing.T) {
	store := suite.newStore(t)

	err := store.Delete(context.Background(), content.ContentID(bytes.Repeat([]byte("a"), 64)))
	assert.NoError(t, err)
}

func (suite *StoreTestSuite) testEmptyContent(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	id, err := store.Put(ctx, []byte{})
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got)
}
