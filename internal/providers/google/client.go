// Package google implements the Google provider client: OAuth, Calendar
// (with Meet conferencing) and Gmail operations.
//
// Unlike Microsoft, Google needs no cache bridge: a single long-lived
// oauth2.Config is reused and the persisted refresh token is placed into a
// TokenSource per call, which refreshes access tokens internally.
package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// Ensure Client implements the provider capability surface.
var _ driven.ProviderClient = (*Client)(nil)

// Google OAuth constants.
const (
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL = "https://oauth2.googleapis.com/token" //nolint:gosec // G101: Not credentials, OAuth endpoint URL
)

// defaultScopes are the OAuth scopes requested on connect.
// Includes all scopes upfront to avoid re-authorization.
var defaultScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/calendar",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.readonly",
}

// Config holds the Google OAuth app credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Configured reports whether the OAuth app credentials are present.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Client is the Google provider client.
type Client struct {
	oauth           *oauth2.Config
	store           driven.CredentialStore
	gmailLimiter    *RateLimiter
	calendarLimiter *RateLimiter

	// clientOptions are appended when building API services; tests inject
	// option.WithEndpoint and option.WithHTTPClient here.
	clientOptions []option.ClientOption
}

// New creates a Google provider client over the given credential store.
func New(cfg Config, store driven.CredentialStore, opts ...option.ClientOption) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       defaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  defaultAuthURL,
				TokenURL: defaultTokenURL,
			},
		},
		store:           store,
		gmailLimiter:    NewRateLimiter(ServiceGmail),
		calendarLimiter: NewRateLimiter(ServiceCalendar),
		clientOptions:   opts,
	}
}

// Type returns the provider identifier.
func (c *Client) Type() domain.ProviderType {
	return domain.ProviderGoogle
}

// AuthURL builds the authorization URL with a caller-supplied opaque state.
// access_type=offline and prompt=consent ensure a refresh token is returned.
func (c *Client) AuthURL(state string) (string, error) {
	if c.oauth.ClientID == "" || c.oauth.ClientSecret == "" {
		return "", fmt.Errorf("%w: google client id/secret missing", domain.ErrNotConfigured)
	}

	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// ExchangeCode exchanges an authorization code and persists the long-lived
// refresh token.
func (c *Client) ExchangeCode(ctx context.Context, accountID, code string) error {
	if c.oauth.ClientID == "" || c.oauth.ClientSecret == "" {
		return fmt.Errorf("%w: google client id/secret missing", domain.ErrNotConfigured)
	}

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("google returned no refresh token; revoke access and reconnect")
	}

	update := domain.CredentialUpdate{GoogleRefreshToken: domain.String(token.RefreshToken)}
	if err := c.store.Update(ctx, accountID, update); err != nil {
		logger.Error("google: failed to persist refresh token for account %s: %v", accountID, err)
		return fmt.Errorf("persist refresh token: %w", err)
	}

	return nil
}

// tokenSource builds a TokenSource from the account's persisted refresh
// token. Stateless between calls: the SDK refreshes internally.
func (c *Client) tokenSource(ctx context.Context, accountID string) (oauth2.TokenSource, error) {
	creds, err := c.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotConnected
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !creds.HasGoogle() {
		return nil, domain.ErrNotConnected
	}

	return c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.GoogleRefreshToken}), nil
}

// calendarService creates a Calendar API service for the account.
func (c *Client) calendarService(ctx context.Context, accountID string) (*calendar.Service, error) {
	ts, err := c.tokenSource(ctx, accountID)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.clientOptions...)
	return calendar.NewService(ctx, opts...)
}

// gmailService creates a Gmail API service for the account.
func (c *Client) gmailService(ctx context.Context, accountID string) (*gmail.Service, error) {
	ts, err := c.tokenSource(ctx, accountID)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.clientOptions...)
	return gmail.NewService(ctx, opts...)
}

// ListEvents returns calendar events between from and to.
func (c *Client) ListEvents(ctx context.Context, accountID string, from, to time.Time) ([]domain.Event, error) {
	if err := c.calendarLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc, err := c.calendarService(ctx, accountID)
	if err != nil {
		return nil, err
	}

	list, err := svc.Events.List("primary").
		TimeMin(from.UTC().Format(time.RFC3339)).
		TimeMax(to.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50).
		Context(ctx).Do()
	if err != nil {
		return nil, WrapError(err)
	}

	events := make([]domain.Event, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, eventFromGoogle(item))
	}
	return events, nil
}

// CreateEvent creates a calendar event. A Meet conference is requested only
// when WithConference is set and no manual link exists; never both.
func (c *Client) CreateEvent(ctx context.Context, accountID string, req domain.EventRequest) (*domain.EventResult, error) {
	if err := c.calendarLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc, err := c.calendarService(ctx, accountID)
	if err != nil {
		return nil, err
	}

	description := req.Description
	if req.MeetingLink != "" {
		description = strings.TrimSpace(description + "\n\nJoin: " + req.MeetingLink)
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: req.Start.UTC().Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: req.End.UTC().Format(time.RFC3339)},
	}
	for _, a := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: a})
	}

	call := svc.Events.Insert("primary", event).SendUpdates("all").Context(ctx)
	if req.WithConference && req.MeetingLink == "" {
		event.ConferenceData = &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		}
		call = call.ConferenceDataVersion(1)
	}

	created, err := call.Do()
	if err != nil {
		return nil, WrapError(err)
	}

	return &domain.EventResult{
		ID:       created.Id,
		JoinURL:  created.HangoutLink,
		HTMLLink: created.HtmlLink,
	}, nil
}

// SendEmail sends a notification email via Gmail.
func (c *Client) SendEmail(ctx context.Context, accountID string, email domain.OutboundEmail) error {
	if err := c.gmailLimiter.Wait(ctx); err != nil {
		return err
	}

	svc, err := c.gmailService(ctx, accountID)
	if err != nil {
		return err
	}

	raw := buildRawMessage(email)
	_, err = svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return WrapError(err)
	}
	return nil
}

// ListMessages returns recent messages, optionally filtered by a Gmail
// search query.
func (c *Client) ListMessages(ctx context.Context, accountID, query string, max int) ([]domain.Message, error) {
	if err := c.gmailLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc, err := c.gmailService(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if max <= 0 {
		max = 25
	}
	call := svc.Users.Messages.List("me").MaxResults(int64(max)).Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	list, err := call.Do()
	if err != nil {
		return nil, WrapError(err)
	}

	messages := make([]domain.Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		full, err := svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "To").
			Context(ctx).Do()
		if err != nil {
			return nil, WrapError(err)
		}
		messages = append(messages, messageFromGoogle(full))
	}
	return messages, nil
}

// GetThread returns every message in a Gmail thread, oldest first.
func (c *Client) GetThread(ctx context.Context, accountID, threadID string) ([]domain.Message, error) {
	if err := c.gmailLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc, err := c.gmailService(ctx, accountID)
	if err != nil {
		return nil, err
	}

	thread, err := svc.Users.Threads.Get("me", threadID).
		Format("metadata").
		MetadataHeaders("Subject", "From", "To").
		Context(ctx).Do()
	if err != nil {
		return nil, WrapError(err)
	}

	messages := make([]domain.Message, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		messages = append(messages, messageFromGoogle(msg))
	}
	return messages, nil
}

// eventFromGoogle converts a Calendar event to the provider-agnostic shape.
func eventFromGoogle(e *calendar.Event) domain.Event {
	ev := domain.Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		JoinURL:     e.HangoutLink,
		HTMLLink:    e.HtmlLink,
	}

	if e.Start != nil {
		ev.Start = parseGoogleTime(e.Start)
	}
	if e.End != nil {
		ev.End = parseGoogleTime(e.End)
	}
	for _, a := range e.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}

	return ev
}

// parseGoogleTime handles both timed and all-day event boundaries.
func parseGoogleTime(edt *calendar.EventDateTime) time.Time {
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	if edt.Date != "" {
		if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// messageFromGoogle converts a Gmail message to the provider-agnostic shape.
func messageFromGoogle(m *gmail.Message) domain.Message {
	msg := domain.Message{
		ID:       m.Id,
		ThreadID: m.ThreadId,
		Snippet:  m.Snippet,
	}

	if m.InternalDate > 0 {
		msg.Date = time.UnixMilli(m.InternalDate).UTC()
	}
	for _, label := range m.LabelIds {
		if label == "UNREAD" {
			msg.Unread = true
		}
	}
	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			switch h.Name {
			case "Subject":
				msg.Subject = h.Value
			case "From":
				msg.From = h.Value
			case "To":
				msg.To = append(msg.To, h.Value)
			}
		}
	}

	return msg
}

// buildRawMessage assembles an RFC 2822 message and encodes it the way the
// Gmail API expects (URL-safe base64, no padding).
func buildRawMessage(email domain.OutboundEmail) string {
	var sb strings.Builder
	sb.WriteString("To: " + email.To + "\r\n")
	sb.WriteString("Subject: " + email.Subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(email.HTMLBody)

	return base64.RawURLEncoding.EncodeToString([]byte(sb.String()))
}
