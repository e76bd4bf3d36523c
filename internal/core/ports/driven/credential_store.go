package driven

import (
	"context"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

// CredentialStore persists per-account provider credentials.
//
// Implementations must support partial updates: clearing one provider's
// token leaves the others untouched, and every refresh-token column is
// nullable.
type CredentialStore interface {
	// Get retrieves the credentials for an account.
	// Returns domain.ErrNotFound if the account has no credential row yet.
	Get(ctx context.Context, accountID string) (*domain.AccountCredentials, error)

	// Update applies a partial update, creating the row if needed.
	// Nil fields in the update are left untouched.
	Update(ctx context.Context, accountID string, update domain.CredentialUpdate) error
}
