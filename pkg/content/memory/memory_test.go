package memory

import (
	"context"
	"testing"

	"github.com/marmos91/docvault/pkg/content"
	contenttesting "github.com/marmos91/docvault/pkg/content/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func(t *testing.T) content.ContentStore {
			return NewMemoryContentStore()
		},
	}
	suite.Run(t)
}

// Mutating the slice a caller passed in or got back must not affect what the
// store holds.
func TestMemoryContentStoreCopies(t *testing.T) {
	store := NewMemoryContentStore()
	ctx := context.Background()

	data := []byte("original")
	id, err := store.Put(ctx, data)
	require.NoError(t, err)
	data[0] = 'X'

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}
