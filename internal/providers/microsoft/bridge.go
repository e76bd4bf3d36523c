package microsoft

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// CacheBridge pairs the in-memory token cache with the credential store.
//
// Load before every cache read, SaveIfChanged after every cache-mutating
// call. Skipping the save step silently loses rotated refresh tokens and
// degrades future silent refreshes to a full re-auth.
type CacheBridge struct {
	cache *TokenCache
	store driven.CredentialStore
}

// NewCacheBridge creates a bridge over the given cache and store.
func NewCacheBridge(cache *TokenCache, store driven.CredentialStore) *CacheBridge {
	return &CacheBridge{cache: cache, store: store}
}

// Load fetches the account's credentials and seeds the cache partition from
// the persisted blob. A missing row or empty blob is a no-op. The fetched
// credentials are returned so callers do not hit the store twice.
func (b *CacheBridge) Load(ctx context.Context, accountID string) (*domain.AccountCredentials, error) {
	creds, err := b.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	if err := b.cache.Seed(accountID, creds.MicrosoftCache); err != nil {
		// A corrupt blob must not strand the account; the descriptor
		// fallback in the token protocol still applies.
		logger.Warn("microsoft: discarding unreadable cache blob for account %s: %v", accountID, err)
	}

	return creds, nil
}

// SaveIfChanged persists the cache partition if and only if it was mutated
// since the last load or save. A persistence failure here breaks the next
// silent refresh, so it is logged loudly as well as returned.
func (b *CacheBridge) SaveIfChanged(ctx context.Context, accountID string) error {
	if !b.cache.Changed(accountID) {
		return nil
	}

	blob, err := b.cache.Serialize(accountID)
	if err != nil {
		return err
	}

	update := domain.CredentialUpdate{MicrosoftCache: domain.String(blob)}
	if err := b.store.Update(ctx, accountID, update); err != nil {
		logger.Error("microsoft: failed to persist rotated token cache for account %s: %v", accountID, err)
		return fmt.Errorf("persist token cache: %w", err)
	}

	return nil
}
