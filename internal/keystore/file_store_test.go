package keystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())

	keys, err := s.Get(1, KindStability)
	require.NoError(t, err)
	assert.Empty(t, keys, "missing file reads as no keys")

	require.NoError(t, s.Put(1, KindStability, []string{"sk-a", "sk-b"}))

	keys, err = s.Get(1, KindStability)
	require.NoError(t, err)
	assert.Equal(t, []string{"sk-a", "sk-b"}, keys)
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	require.NoError(t, s.Put(42, KindGemini, []string{"g-key"}))

	data, err := os.ReadFile(filepath.Join(dir, "42_gemini.keys"))
	require.NoError(t, err)
	assert.Equal(t, "g-key\n", string(data), "plain newline-separated tokens")
}

func TestFileStoreNamespacesAreIndependent(t *testing.T) {
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Put(1, KindGemini, []string{"g"}))
	require.NoError(t, s.Put(1, KindStability, []string{"s1", "s2"}))

	gemini, err := s.Get(1, KindGemini)
	require.NoError(t, err)
	stability, err := s.Get(1, KindStability)
	require.NoError(t, err)

	assert.Equal(t, []string{"g"}, gemini)
	assert.Equal(t, []string{"s1", "s2"}, stability)
}

func TestFileStorePutEmptyDeletesFile(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)

	require.NoError(t, s.Put(1, KindStability, []string{"sk"}))
	require.NoError(t, s.Put(1, KindStability, nil))

	_, err := os.Stat(filepath.Join(dir, "1_stability.keys"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreDelete(t *testing.T) {
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Put(1, KindGemini, []string{"g"}))
	require.NoError(t, s.Delete(1, KindGemini))
	require.NoError(t, s.Delete(1, KindGemini), "deleting a missing file is fine")

	keys, err := s.Get(1, KindGemini)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFileStoreList(t *testing.T) {
	s := NewFileStore(t.TempDir())

	require.NoError(t, s.Put(10, KindStability, []string{"a"}))
	require.NoError(t, s.Put(20, KindStability, []string{"b"}))
	require.NoError(t, s.Put(30, KindGemini, []string{"c"}))

	chats, err := s.List(KindStability)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{10, 20}, chats)
}
