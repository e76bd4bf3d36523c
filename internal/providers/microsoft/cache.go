package microsoft

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Account is one cached Microsoft account and its refresh material.
type Account struct {
	// HomeAccountID is the provider's account descriptor ("oid.tid").
	HomeAccountID string `json:"home_account_id"`
	// Username is the account's email or UPN.
	Username string `json:"username,omitempty"`
	// RefreshToken is the current refresh token for this account.
	RefreshToken string `json:"refresh_token"`

	// Access tokens are process-local and never serialized; only refresh
	// material survives in the persisted blob.
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"-"`
}

// cacheBlob is the serialized form of one account's cache partition.
// Opaque outside this package.
type cacheBlob struct {
	Accounts []Account `json:"accounts"`
}

// TokenCache is the in-memory multi-account token cache, partitioned by
// HireFlow account id. It is process-wide shared state, mutated only inside
// a bridge load/save cycle.
type TokenCache struct {
	mu         sync.Mutex
	partitions map[string]*partition
}

type partition struct {
	accounts []Account
	changed  bool
}

// NewTokenCache creates an empty token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{partitions: make(map[string]*partition)}
}

// Seed loads a serialized blob into the partition for accountID, replacing
// whatever was there. An empty blob is a no-op beyond creating the
// partition. Seeding never marks the partition changed.
func (c *TokenCache) Seed(accountID, blob string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(accountID)
	if blob == "" {
		return nil
	}

	var decoded cacheBlob
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		return fmt.Errorf("decode token cache blob: %w", err)
	}

	p.accounts = decoded.Accounts
	p.changed = false
	return nil
}

// Accounts returns a copy of the cached accounts for accountID.
func (c *TokenCache) Accounts(accountID string) []Account {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(accountID)
	out := make([]Account, len(p.accounts))
	copy(out, p.accounts)
	return out
}

// Put upserts an account by HomeAccountID. The partition is marked changed
// only when persisted material differs, so an unrotated refresh token does
// not trigger a blob rewrite.
func (c *TokenCache) Put(accountID string, acct Account) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(accountID)
	for i := range p.accounts {
		if p.accounts[i].HomeAccountID == acct.HomeAccountID {
			if p.accounts[i].RefreshToken != acct.RefreshToken ||
				p.accounts[i].Username != acct.Username {
				p.changed = true
			}
			p.accounts[i] = acct
			return
		}
	}

	p.accounts = append(p.accounts, acct)
	p.changed = true
}

// Remove drops an account whose refresh material proved invalid.
func (c *TokenCache) Remove(accountID, homeAccountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(accountID)
	for i := range p.accounts {
		if p.accounts[i].HomeAccountID == homeAccountID {
			p.accounts = append(p.accounts[:i], p.accounts[i+1:]...)
			p.changed = true
			return
		}
	}
}

// Changed reports whether the partition has unsaved mutations.
func (c *TokenCache) Changed(accountID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.partition(accountID).changed
}

// Serialize returns the partition as an opaque blob and clears the changed
// flag. Call only after the blob has been handed to the store.
func (c *TokenCache) Serialize(accountID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.partition(accountID)
	blob, err := json.Marshal(cacheBlob{Accounts: p.accounts})
	if err != nil {
		return "", fmt.Errorf("encode token cache blob: %w", err)
	}

	p.changed = false
	return string(blob), nil
}

// partition returns the partition for accountID, creating it if needed.
// Caller must hold the mutex.
func (c *TokenCache) partition(accountID string) *partition {
	p, ok := c.partitions[accountID]
	if !ok {
		p = &partition{}
		c.partitions[accountID] = p
	}
	return p
}
