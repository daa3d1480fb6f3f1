package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/docvault/pkg/content"
	contenttesting "github.com/marmos91/docvault/pkg/content/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func(t *testing.T) content.ContentStore {
			store, err := NewFSContentStore(context.Background(), t.TempDir())
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}

func TestFSContentStoreFanout(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	store, err := NewFSContentStore(ctx, root)
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Put(ctx, []byte("fanout layout"))
	require.NoError(t, err)

	name := string(id)
	path := filepath.Join(root, name[0:2], name[2:4], name)
	_, err = os.Stat(path)
	assert.NoError(t, err, "object should live under two-level fanout directories")
}

func TestFSContentStorePersistsAcrossReopen(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	store, err := NewFSContentStore(ctx, root)
	require.NoError(t, err)
	id, err := store.Put(ctx, []byte("durable"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewFSContentStore(ctx, root)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), got)
}

func TestFSContentStoreRejectsMalformedID(t *testing.T) {
	store, err := NewFSContentStore(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), content.ContentID("../../etc/passwd"))
	assert.ErrorIs(t, err, content.ErrContentNotFound)
}
