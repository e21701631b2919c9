package localstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, ok, err := s.Get(KeyAddress)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(KeyAddress, "0xabc"))
	require.NoError(t, s.SetMany(map[string]string{KeyAccessToken: "tok", KeyIsLoggedIn: "true"}))

	v, ok, err := s.Get(KeyAddress)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xabc", v)

	require.NoError(t, s.Delete(SessionKeys...))
	_, ok, err = s.Get(KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _, err = s.Get(KeyAddress)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", v, "logout keys must not touch wallet keys")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wallet.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(KeyAddress)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xabc", v)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFileStoreSkipsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"address":"0x1"}`)...), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := s.Get(KeyAddress)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0x1", v)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, _, err = s.Get(KeyAddress)
	assert.Error(t, err)
}

func TestNewFileStoreEmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
