package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache records whether Clear was called.
type fakeCache struct {
	cleared int
}

func (f *fakeCache) Clear() {
	f.cleared++
}

func testSession() Session {
	return Session{
		Token:      "tok-123",
		UserID:     "user-1",
		TenantID:   "tenant-1",
		UserName:   "Ada",
		TenantName: "Acme",
		Role:       "admin",
	}
}

func TestStore_LoginPersistsAndAuthenticates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path)

	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.Login(testSession()))
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok-123", store.Token())

	// A fresh store sees the persisted record.
	reloaded := NewStore(path)
	assert.True(t, reloaded.IsAuthenticated())
	current, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, "Acme", current.TenantName)
}

func TestStore_LoginRejectsEmptyToken(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	err := store.Login(Session{UserID: "user-1"})
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_LogoutClearsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	cache := &fakeCache{}
	store := NewStore(path, WithCache(cache))
	require.NoError(t, store.Login(testSession()))

	store.Logout()

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, 1, cache.cleared, "logout must drop the entire cache")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "persisted record should be removed")
}

func TestStore_MissingRecordMeansLoggedOut(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope", "session.json"))
	assert.False(t, store.IsAuthenticated())
}

func TestStore_MalformedRecordMeansLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	// Must not panic or error, just degrade.
	store := NewStore(path)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_SealedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path, WithPassphrase("hunter2"))
	require.NoError(t, store.Login(testSession()))

	// The record on disk is opaque.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "tok-123")

	reloaded := NewStore(path, WithPassphrase("hunter2"))
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "tok-123", reloaded.Token())
}

func TestStore_WrongPassphraseMeansLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewStore(path, WithPassphrase("hunter2"))
	require.NoError(t, store.Login(testSession()))

	reloaded := NewStore(path, WithPassphrase("wrong"))
	assert.False(t, reloaded.IsAuthenticated(), "an unsealable record degrades to logged-out")
}

func TestStore_HandleAuthErrorLogsOutBeforeObservers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	cache := &fakeCache{}
	store := NewStore(path, WithCache(cache))
	require.NoError(t, store.Login(testSession()))

	var sawAuthenticated bool
	var fired int
	store.OnAuthError(func() {
		fired++
		sawAuthenticated = store.IsAuthenticated()
	})

	store.HandleAuthError()

	assert.Equal(t, 1, fired)
	assert.False(t, sawAuthenticated, "observers must see the already-cleared state")
	assert.Equal(t, 1, cache.cleared)
}
