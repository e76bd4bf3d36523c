package microsoft

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCache_SeedAndAccounts(t *testing.T) {
	cache := NewTokenCache()

	blob, err := json.Marshal(cacheBlob{Accounts: []Account{
		{HomeAccountID: "oid.tid", Username: "user@example.com", RefreshToken: "rt-1"},
	}})
	require.NoError(t, err)

	require.NoError(t, cache.Seed("acc-1", string(blob)))

	accounts := cache.Accounts("acc-1")
	require.Len(t, accounts, 1)
	assert.Equal(t, "oid.tid", accounts[0].HomeAccountID)
	assert.Equal(t, "rt-1", accounts[0].RefreshToken)

	// Seeding never marks the partition dirty.
	assert.False(t, cache.Changed("acc-1"))
}

func TestTokenCache_SeedEmptyBlob(t *testing.T) {
	cache := NewTokenCache()

	require.NoError(t, cache.Seed("acc-1", ""))
	assert.Empty(t, cache.Accounts("acc-1"))
}

func TestTokenCache_SeedCorruptBlob(t *testing.T) {
	cache := NewTokenCache()

	err := cache.Seed("acc-1", "{not json")
	assert.Error(t, err)
}

func TestTokenCache_PutMarksChangedOnlyOnNewMaterial(t *testing.T) {
	cache := NewTokenCache()

	acct := Account{HomeAccountID: "oid.tid", Username: "user@example.com", RefreshToken: "rt-1"}
	cache.Put("acc-1", acct)
	assert.True(t, cache.Changed("acc-1"))

	_, err := cache.Serialize("acc-1")
	require.NoError(t, err)
	assert.False(t, cache.Changed("acc-1"))

	// Same refresh material: an access-token update must not dirty the blob.
	acct.AccessToken = "fresh-access-token"
	cache.Put("acc-1", acct)
	assert.False(t, cache.Changed("acc-1"))

	// Rotated refresh token does.
	acct.RefreshToken = "rt-2"
	cache.Put("acc-1", acct)
	assert.True(t, cache.Changed("acc-1"))
}

func TestTokenCache_SerializeOmitsAccessTokens(t *testing.T) {
	cache := NewTokenCache()
	cache.Put("acc-1", Account{
		HomeAccountID: "oid.tid",
		RefreshToken:  "rt-1",
		AccessToken:   "secret-access-token",
	})

	blob, err := cache.Serialize("acc-1")
	require.NoError(t, err)
	assert.NotContains(t, blob, "secret-access-token")
	assert.Contains(t, blob, "rt-1")
}

func TestTokenCache_Remove(t *testing.T) {
	cache := NewTokenCache()
	cache.Put("acc-1", Account{HomeAccountID: "oid.tid", RefreshToken: "rt-1"})
	_, err := cache.Serialize("acc-1")
	require.NoError(t, err)

	cache.Remove("acc-1", "oid.tid")
	assert.Empty(t, cache.Accounts("acc-1"))
	assert.True(t, cache.Changed("acc-1"))

	// Removing an unknown account is a no-op.
	cache.Remove("acc-1", "missing")
}

func TestTokenCache_PartitionsAreIsolated(t *testing.T) {
	cache := NewTokenCache()
	cache.Put("acc-1", Account{HomeAccountID: "a.t", RefreshToken: "rt-a"})

	assert.Empty(t, cache.Accounts("acc-2"))
	assert.False(t, cache.Changed("acc-2"))
}
