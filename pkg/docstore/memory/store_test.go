package memory

import (
	"testing"

	"github.com/marmos91/docvault/pkg/docstore"
	storetesting "github.com/marmos91/docvault/pkg/docstore/testing"
)

// TestMemoryStore runs the complete Store test suite against the in-memory
// implementation.
func TestMemoryStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) docstore.Store {
			return NewMemoryStore()
		},
	}
	suite.Run(t)
}
