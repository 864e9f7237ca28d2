package storage

import (
	"context"
	"testing"

	"wishwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	data := []byte{0x89, 0x50, 0x4e, 0x47}
	ref, err := store.Save(context.Background(), data, ".png")
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	loaded, err := store.Load(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestDiskStoreRefsAreUnique(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(context.Background(), []byte("one"), ".jpg")
	require.NoError(t, err)
	second, err := store.Save(context.Background(), []byte("two"), ".jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDiskStoreUnknownRef(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "nope.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDiskStoreRejectsPathRefs(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"", "../secret", "a/b.jpg", "/etc/passwd"} {
		_, err := store.Load(context.Background(), ref)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	store, err := New("disk", dir, nil)
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, store)

	store, err = New("", dir, nil)
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, store)

	_, err = New("s3", dir, nil)
	require.Error(t, err)
}
