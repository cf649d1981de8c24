package auth

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestScopeCoverage(t *testing.T) {
	assert.True(t, covers(Scopes(Write), Scopes(Read)))
	assert.False(t, covers(Scopes(Read), Scopes(Write)))
	assert.True(t, covers(Scopes(Read), Scopes(Read)))
	assert.True(t, covers([]string{"files.readwrite.all"}, []string{"Files.Read.All"}))
}

func TestCacheLookupWithMissingFile(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "nested", "tokens.json"))

	_, _, ok, err := cache.Lookup("", Scopes(Read))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheStoreReplacesEntryWithSameScopes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	cache := NewCache(path)

	require.NoError(t, cache.Store("alice", Scopes(Read), &oauth2.Token{AccessToken: "one"}))
	require.NoError(t, cache.Store("alice", Scopes(Write), &oauth2.Token{AccessToken: "two"}))
	require.NoError(t, cache.Store("alice", Scopes(Read), &oauth2.Token{AccessToken: "three"}))

	f, err := cache.load()
	require.NoError(t, err)
	require.Len(t, f.Accounts["alice"], 2)

	_, token, ok, err := cache.Lookup("alice", Scopes(Write))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", token.AccessToken)
}

func TestCacheLookupByAccount(t *testing.T) {
	cache := NewCache(filepath.Join(t.TempDir(), "tokens.json"))

	require.NoError(t, cache.Store("bob", Scopes(Write), &oauth2.Token{AccessToken: "bob"}))
	require.NoError(t, cache.Store("alice", Scopes(Write), &oauth2.Token{AccessToken: "alice"}))

	account, token, ok, err := cache.Lookup("", Scopes(Read))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", account)
	assert.Equal(t, "alice", token.AccessToken)

	account, token, ok, err = cache.Lookup("bob", Scopes(Read))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bob", account)
	assert.Equal(t, "bob", token.AccessToken)

	_, _, ok, err = cache.Lookup("carol", Scopes(Read))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheFileIsPrivate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "tokens.json")
	cache := NewCache(path)

	require.NoError(t, cache.Store("alice", Scopes(Read), &oauth2.Token{AccessToken: "one"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCacheWithInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, _, _, err := NewCache(path).Lookup("", Scopes(Read))
	require.Error(t, err)
}
