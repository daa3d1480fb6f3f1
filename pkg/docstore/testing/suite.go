// Package testing provides a reusable test suite for docstore.Store
// implementations.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/docvault/pkg/address"
	"github.com/marmos91/docvault/pkg/crypto"
	"github.com/marmos91/docvault/pkg/docstore"
	"github.com/marmos91/docvault/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreTestSuite exercises the docstore.Store contract. It tests the
// interface contract, not implementation details, making it reusable across
// implementations (memory, badger).
//
// Usage:
//
//	func TestMemoryStore(t *testing.T) {
//	    suite := &storetesting.StoreTestSuite{
//	        NewStore: func(t *testing.T) docstore.Store {
//	            return memory.NewMemoryStore()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh Store for each test. The suite closes the
	// store via t.Cleanup.
	NewStore func(t *testing.T) docstore.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("RegistryRoundTrip", suite.testRegistryRoundTrip)
	t.Run("DocumentRoundTrip", suite.testDocumentRoundTrip)
	t.Run("FetchMissing", suite.testFetchMissing)
	t.Run("DeleteDocument", suite.testDeleteDocument)
	t.Run("DeleteMissingDocument", suite.testDeleteMissingDocument)
	t.Run("TransactionRollback", suite.testTransactionRollback)
	t.Run("TransactionReadsOwnWrites", suite.testTransactionReadsOwnWrites)
	t.Run("ListByOwner", suite.testListByOwner)
	t.Run("ListBySharedWith", suite.testListBySharedWith)
	t.Run("ReturnedValuesAreCopies", suite.testReturnedValuesAreCopies)
	t.Run("WatchDeliversEvents", suite.testWatchDeliversEvents)
}

func (suite *StoreTestSuite) newStore(t *testing.T) docstore.Store {
	t.Helper()
	store := suite.NewStore(t)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testIdentity(t *testing.T) identity.Identity {
	t.Helper()
	signer, err := identity.NewEd25519Signer()
	require.NoError(t, err)
	return signer.Public()
}

func testDocument(owner identity.Identity, name string) *docstore.Document {
	return &docstore.Document{
		Owner:    owner,
		FileName: name,
		FileType: "application/pdf",
		OwnerPointer: crypto.SealedPointer{
			Ciphertext: []byte("ciphertext-" + name),
			Nonce:      []byte("nonce-" + name),
		},
		CreatedAt: time.Now().Unix(),
	}
}

func putDocument(t *testing.T, store docstore.Store, addr address.Address, doc *docstore.Document) {
	t.Helper()
	err := store.Update(context.Background(), func(tx docstore.Tx) error {
		return tx.PutDocument(addr, doc)
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testRegistryRoundTrip(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	owner := testIdentity(t)
	addr := docstore.RegistryAddress(owner)

	err := store.Update(ctx, func(tx docstore.Tx) error {
		return tx.PutRegistry(addr, &docstore.Registry{Owner: owner, DocumentCount: 3})
	})
	require.NoError(t, err)

	reg, err := store.FetchRegistry(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, owner, reg.Owner)
	assert.Equal(t, uint64(3), reg.DocumentCount)
}

func (suite *StoreTestSuite) testDocumentRoundTrip(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	owner := testIdentity(t)
	recipient := testIdentity(t)
	addr := docstore.DocumentAddress(owner, "report.pdf")

	doc := testDocument(owner, "report.pdf")
	doc.SharedWith = []docstore.ShareEntry{{
		Recipient: recipient,
		Pointer:   crypto.SealedPointer{Ciphertext: []byte("ct"), Nonce: []byte("n")},
		SharedAt:  42,
	}}
	putDocument(t, store, addr, doc)

	got, err := store.FetchDocument(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, doc.Owner, got.Owner)
	assert.Equal(t, doc.FileName, got.FileName)
	assert.Equal(t, doc.FileType, got.FileType)
	assert.Equal(t, doc.OwnerPointer, got.OwnerPointer)
	assert.Equal(t, doc.CreatedAt, got.CreatedAt)
	require.Len(t, got.SharedWith, 1)
	assert.Equal(t, recipient, got.SharedWith[0].Recipient)
	assert.Equal(t, int64(42), got.SharedWith[0].SharedAt)
}

func (suite *StoreTestSuite) testFetchMissing(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	missing := address.Derive("nothing", []byte("here"))

	_, err := store.FetchRegistry(ctx, missing)
	assert.True(t, docstore.IsNotFound(err), "expected not-found, got %v", err)

	_, err = store.FetchDocument(ctx, missing)
	assert.True(t, docstore.IsNotFound(err), "expected not-found, got %v", err)
}

func (suite *StoreTestSuite) testDeleteDocument(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	owner := testIdentity(t)
	addr := docstore.DocumentAddress(owner, "trash.txt")
	putDocument(t, store, addr, testDocument(owner, "trash.txt"))

	err := store.Update(ctx, func(tx docstore.Tx) error {
		return tx.DeleteDocument(addr)
	})
	require.NoError(t, err)

	_, err = store.FetchDocument(ctx, addr)
	assert.True(t, docstore.IsNotFound(err))
}

func (suite *StoreTestSuite) testDeleteMissingDocument(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	missing := address.Derive("nothing", []byte("here"))
	err := store.Update(ctx, func(tx docstore.Tx) error {
		return tx.DeleteDocument(missing)
	})
	assert.True(t, docstore.IsNotFound(err))
}

func (suite *StoreTestSuite) testTransactionRollback(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	owner := testIdentity(t)
	regAddr := docstore.RegistryAddress(owner)
	docAddr := docstore.DocumentAddress(owner, "doomed.txt")

	// A transaction that writes both records and then fails must leave
	// neither behind.
	failure := docstore.NewError(docstore.ErrInvalidArgument, "boom")
	err := store.Update(ctx, func(tx docstore.Tx) error {
		if err := tx.PutRegistry(regAddr, &docstore.Registry{Owner: owner, DocumentCount: 1}); err != nil {
			return err
		}
		if err := tx.PutDocument(docAddr, testDocument(owner, "doomed.txt")); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure, "transaction error must pass through unchanged")

	_, err = store.FetchRegistry(ctx, regAddr)
	assert.True(t, docstore.IsNotFound(err), "rollback must discard registry write")
	_, err = store.FetchDocument(ctx, docAddr)
	assert.True(t, docstore.IsNotFound(err), "rollback must discard document write")
}

func (suite *StoreTestSuite) testTransactionReadsOwnWrites(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	owner := testIdentity(t)
	addr := docstore.RegistryAddress(owner)

	err := store.Update(ctx, func(tx docstore.Tx) error {
		if err := tx.PutRegistry(addr, &docstore.Registry{Owner: owner, DocumentCount: 7}); err != nil {
			return err
		}
		reg, err := tx.GetRegistry(addr)
		if err != nil {
			return err
		}
		assert.Equal(t, uint64(7), reg.DocumentCount)
		return nil
	})
	require.NoError(t, err)
}

func (suite *StoreTestSuite) testListByOwner(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	alice := testIdentity(t)
	bob := testIdentity(t)

	putDocument(t, store, docstore.DocumentAddress(alice, "a1"), testDocument(alice, "a1"))
	putDocument(t, store, docstore.DocumentAddress(alice, "a2"), testDocument(alice, "a2"))
	putDocument(t, store, docstore.DocumentAddress(bob, "b1"), testDocument(bob, "b1"))

	docs, err := store.ListDocuments(ctx, docstore.Filter{Owner: &alice})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, alice, d.Document.Owner)
	}

	all, err := store.ListDocuments(ctx, docstore.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func (suite *StoreTestSuite) testListBySharedWith(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	alice := testIdentity(t)
	bob := testIdentity(t)
	carol := testIdentity(t)

	shared := testDocument(alice, "shared")
	shared.SharedWith = []docstore.ShareEntry{{Recipient: bob, SharedAt: 1}}
	putDocument(t, store, docstore.DocumentAddress(alice, "shared"), shared)
	putDocument(t, store, docstore.DocumentAddress(alice, "private"), testDocument(alice, "private"))

	docs, err := store.ListDocuments(ctx, docstore.Filter{SharedWith: &bob})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "shared", docs[0].Document.FileName)

	docs, err = store.ListDocuments(ctx, docstore.Filter{SharedWith: &carol})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func (suite *StoreTestSuite) testReturnedValuesAreCopies(t *testing.T) {
	store := suite.newStore(t)
	ctx := context.Background()

	owner := testIdentity(t)
	addr := docstore.DocumentAddress(owner, "copy.txt")
	putDocument(t, store, addr, testDocument(owner, "copy.txt"))

	got, err := store.FetchDocument(ctx, addr)
	require.NoError(t, err)

	// Mutating the returned value must not change stored state.
	got.FileType = "mutated"
	got.OwnerPointer.Ciphertext[0] ^= 0xff
	got.SharedWith = append(got.SharedWith, docstore.ShareEntry{Recipient: testIdentity(t)})

	fresh, err := store.FetchDocument(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", fresh.FileType)
	assert.Equal(t, []byte("ciphertext-copy.txt"), fresh.OwnerPointer.Ciphertext)
	assert.Empty(t, fresh.SharedWith)
}

func (suite *StoreTestSuite) testWatchDeliversEvents(t *testing.T) {
	store := suite.newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Watch(ctx)
	require.NoError(t, err)

	owner := testIdentity(t)
	addr := docstore.DocumentAddress(owner, "watched.txt")
	putDocument(t, store, addr, testDocument(owner, "watched.txt"))

	select {
	case ev, ok := <-events:
		require.True(t, ok, "watch channel closed before delivering an event")
		assert.Equal(t, addr, ev.Address)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}
