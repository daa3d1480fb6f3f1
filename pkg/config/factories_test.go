package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStoreMemory(t *testing.T) {
	store, err := CreateStore(context.Background(), &StoreConfig{Type: "memory"})
	require.NoError(t, err)
	defer store.Close()
	assert.NotNil(t, store)
}

func TestCreateStoreBadgerInMemory(t *testing.T) {
	store, err := CreateStore(context.Background(), &StoreConfig{
		Type:   "badger",
		Badger: map[string]any{"in_memory": true},
	})
	require.NoError(t, err)
	defer store.Close()
	assert.NotNil(t, store)
}

func TestCreateStoreBadgerOnDisk(t *testing.T) {
	store, err := CreateStore(context.Background(), &StoreConfig{
		Type:   "badger",
		Badger: map[string]any{"path": t.TempDir()},
	})
	require.NoError(t, err)
	defer store.Close()
	assert.NotNil(t, store)
}

func TestCreateStoreBadgerMissingPath(t *testing.T) {
	_, err := CreateStore(context.Background(), &StoreConfig{
		Type:   "badger",
		Badger: map[string]any{},
	})
	assert.Error(t, err)
}

func TestCreateStoreUnknownType(t *testing.T) {
	_, err := CreateStore(context.Background(), &StoreConfig{Type: "etcd"})
	assert.Error(t, err)
}

func TestCreateContentStoreMemory(t *testing.T) {
	store, err := CreateContentStore(context.Background(), &ContentConfig{Type: "memory"})
	require.NoError(t, err)
	defer store.Close()
	assert.NotNil(t, store)
}

func TestCreateContentStoreFilesystem(t *testing.T) {
	store, err := CreateContentStore(context.Background(), &ContentConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{"path": t.TempDir()},
	})
	require.NoError(t, err)
	defer store.Close()
	assert.NotNil(t, store)
}

func TestCreateContentStoreFilesystemMissingPath(t *testing.T) {
	_, err := CreateContentStore(context.Background(), &ContentConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{},
	})
	assert.Error(t, err)
}

func TestCreateContentStoreS3MissingBucket(t *testing.T) {
	_, err := CreateContentStore(context.Background(), &ContentConfig{
		Type: "s3",
		S3:   map[string]any{"region": "eu-west-1"},
	})
	assert.Error(t, err)
}

func TestCreateContentStoreUnknownType(t *testing.T) {
	_, err := CreateContentStore(context.Background(), &ContentConfig{Type: "gcs"})
	assert.Error(t, err)
}
