package storage

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("session", testDoc{Name: "analyst", Count: 3}))

	var got testDoc
	found, err := store.Get("session", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, testDoc{Name: "analyst", Count: 3}, got)
}

func TestStore_GetMissingKeyIsNotAnError(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	var got testDoc
	found, err := store.Get("never-written", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_DeleteMissingKeyIsNoOp(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete("nothing"))
}

func TestStore_PutOverwrites(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put("theme", map[string]string{"mode": "light"}))
	require.NoError(t, store.Put("theme", map[string]string{"mode": "dark"}))

	var got map[string]string
	found, err := store.Get("theme", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "dark", got["mode"])
}

func TestStore_CorruptedFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.FileFor("session"), []byte("{not json"), 0o600))

	var got testDoc
	_, err = store.Get("session", &got)
	assert.Error(t, err)
}

func TestStore_NoLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put("preferences", testDoc{Name: "a"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
