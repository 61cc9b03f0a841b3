package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	err := manager.Store(&Token{Name: "personal", AccessToken: "abc123"})
	require.NoError(t, err)

	token, err := manager.Retrieve("personal")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token.AccessToken)
	assert.False(t, token.LastModified.IsZero())
}

func TestManagerDefaultName(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	require.NoError(t, manager.Store(&Token{AccessToken: "abc123"}))

	token, err := manager.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenName, token.Name)
}

func TestManagerFallbackStore(t *testing.T) {
	failing := NewMockStore()
	failing.SetFailStore(true)
	fallback := NewMockStore()
	manager := NewManagerWithStores(failing, fallback)

	require.NoError(t, manager.Store(&Token{Name: "personal", AccessToken: "abc123"}))

	assert.False(t, failing.Exists("personal"))
	assert.True(t, fallback.Exists("personal"))
}

func TestManagerRejectsEmptyToken(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())
	assert.ErrorIs(t, manager.Store(&Token{Name: "x"}), ErrInvalidToken)
}

func TestManagerResolvePrecedence(t *testing.T) {
	store := NewMockStore()
	require.NoError(t, store.Store(&Token{Name: DefaultTokenName, AccessToken: "stored-token"}))
	manager := NewManagerWithStores(store)

	// An explicit token always wins over a stored one
	token, err := manager.Resolve("explicit-token", "")
	require.NoError(t, err)
	assert.Equal(t, "explicit-token", token)

	token, err = manager.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)

	_, err = manager.Resolve("", "missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestManagerDelete(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	require.NoError(t, manager.Store(&Token{Name: "personal", AccessToken: "abc"}))
	require.NoError(t, manager.Delete("personal"))
	assert.False(t, store.Exists("personal"))

	assert.ErrorIs(t, manager.Delete("personal"), ErrTokenNotFound)
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv("STRAVA_ACCESS_TOKEN", "")
	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.False(t, store.Exists(""))

	t.Setenv("STRAVA_ACCESS_TOKEN", "env-token")
	token, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", token.AccessToken)
	assert.Equal(t, DefaultTokenName, token.Name)

	assert.ErrorIs(t, store.Store(&Token{Name: "x", AccessToken: "y"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("x"), ErrStoreUnavailable)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("STRAVADUMP_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "tokens.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(&Token{Name: "personal", AccessToken: "secret"}))
	assert.True(t, store.Exists("personal"))

	// A fresh store over the same file and passphrase can read it back
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	token, err := reopened.Retrieve("personal")
	require.NoError(t, err)
	assert.Equal(t, "secret", token.AccessToken)

	// A wrong passphrase cannot
	t.Setenv("STRAVADUMP_PASSPHRASE", "wrong")
	locked, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = locked.Retrieve("personal")
	assert.Error(t, err)
}

func TestEncryptedFileStoreDeleteRemovesEmptyFile(t *testing.T) {
	t.Setenv("STRAVADUMP_PASSPHRASE", "test-passphrase")
	path := filepath.Join(t.TempDir(), "tokens.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(&Token{Name: "personal", AccessToken: "secret"}))
	require.NoError(t, store.Delete("personal"))

	assert.False(t, store.Exists("personal"))
	assert.ErrorIs(t, store.Delete("personal"), ErrTokenNotFound)
}
