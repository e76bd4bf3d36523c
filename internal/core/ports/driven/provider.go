package driven

import (
	"context"
	"time"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

// AuthClient covers the OAuth lifecycle of a provider.
type AuthClient interface {
	// AuthURL builds the authorization URL. The caller-supplied state is
	// opaque and carries the account id through the redirect. Returns
	// domain.ErrNotConfigured if the OAuth app credentials are missing.
	AuthURL(state string) (string, error)

	// ExchangeCode exchanges an authorization code and persists whatever
	// token material the provider needs for later silent refresh.
	ExchangeCode(ctx context.Context, accountID, code string) error
}

// CalendarClient covers calendar operations of a provider.
//
// Implementations acquire a fresh access token per call, normalize the
// remote response and propagate remote errors unchanged. Retry policy
// belongs to the scheduler, not the client.
type CalendarClient interface {
	ListEvents(ctx context.Context, accountID string, from, to time.Time) ([]domain.Event, error)
	CreateEvent(ctx context.Context, accountID string, req domain.EventRequest) (*domain.EventResult, error)
}

// MailClient covers mail operations of a provider.
type MailClient interface {
	SendEmail(ctx context.Context, accountID string, email domain.OutboundEmail) error
	ListMessages(ctx context.Context, accountID, query string, max int) ([]domain.Message, error)
	GetThread(ctx context.Context, accountID, threadID string) ([]domain.Message, error)
}

// MeetingClient creates join links for interviews (Zoom).
type MeetingClient interface {
	// CreateMeeting creates a scheduled meeting and returns its join URL.
	// Returns domain.ErrNotConnected if the account holds no credential.
	CreateMeeting(ctx context.Context, accountID string, req domain.MeetingRequest) (*domain.Meeting, error)
}

// ProviderClient is the full capability surface of a calendar/mail provider.
// Google and Microsoft implement all of it; capability lookups go through
// the registry, which hands out nil for anything unavailable.
type ProviderClient interface {
	AuthClient
	CalendarClient
	MailClient

	// Type returns the provider identifier.
	Type() domain.ProviderType
}
