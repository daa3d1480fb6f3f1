package badger

import (
	"testing"

	"github.com/marmos91/docvault/pkg/docstore"
	storetesting "github.com/marmos91/docvault/pkg/docstore/testing"
	"github.com/stretchr/testify/require"
)

// TestBadgerStore runs the complete Store test suite against the BadgerDB
// implementation, using a temporary directory per test.
func TestBadgerStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) docstore.Store {
			store, err := NewBadgerStore(Config{Path: t.TempDir()})
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}

// TestBadgerStoreInMemory runs the suite against badger's in-memory mode,
// which is what tests and ephemeral deployments use.
func TestBadgerStoreInMemory(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) docstore.Store {
			store, err := NewBadgerStore(Config{InMemory: true})
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}

func TestNewBadgerStoreRequiresPath(t *testing.T) {
	_, err := NewBadgerStore(Config{})
	require.Error(t, err)
}
