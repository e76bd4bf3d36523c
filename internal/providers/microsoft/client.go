// Package microsoft implements the Microsoft 365 provider client: OAuth
// against the common tenant, a persisted multi-account token cache with
// silent refresh, and calendar/mail operations over Microsoft Graph.
package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// Ensure Client implements the provider capability surface.
var _ driven.ProviderClient = (*Client)(nil)

// Config holds the Microsoft OAuth app credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Configured reports whether the OAuth app credentials are present.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Client is the Microsoft provider client.
type Client struct {
	cfg    Config
	store  driven.CredentialStore
	cache  *TokenCache
	bridge *CacheBridge

	mailLimiter     *RateLimiter
	calendarLimiter *RateLimiter
	httpClient      *http.Client

	// Endpoint overrides for tests.
	baseURL  string
	authURL  string
	tokenURL string
}

// New creates a Microsoft provider client over the given credential store.
func New(cfg Config, store driven.CredentialStore) *Client {
	cache := NewTokenCache()
	return &Client{
		cfg:             cfg,
		store:           store,
		cache:           cache,
		bridge:          NewCacheBridge(cache, store),
		mailLimiter:     NewRateLimiter(ServiceMail),
		calendarLimiter: NewRateLimiter(ServiceCalendar),
		httpClient:      &http.Client{Timeout: 60 * time.Second},
		baseURL:         graphBaseURL,
		authURL:         defaultAuthURL,
		tokenURL:        defaultTokenURL,
	}
}

// Type returns the provider identifier.
func (c *Client) Type() domain.ProviderType {
	return domain.ProviderMicrosoft
}

// AuthURL builds the authorization URL with a caller-supplied opaque state.
// The state carries the account id through the redirect.
func (c *Client) AuthURL(state string) (string, error) {
	if !c.cfg.Configured() {
		return "", fmt.Errorf("%w: microsoft client id/secret missing", domain.ErrNotConfigured)
	}
	return buildAuthURL(c.authURL, c.cfg.ClientID, c.cfg.RedirectURI, state), nil
}

// ExchangeCode exchanges an authorization code and persists the raw token
// response plus a seeded cache blob. The raw response is kept because silent
// refresh later needs the account descriptor inside it, not just the bare
// refresh token.
func (c *Client) ExchangeCode(ctx context.Context, accountID, code string) error {
	if !c.cfg.Configured() {
		return fmt.Errorf("%w: microsoft client id/secret missing", domain.ErrNotConfigured)
	}

	resp, raw, err := exchangeCode(ctx, c.tokenURL, c.cfg.ClientID, c.cfg.ClientSecret, code, c.cfg.RedirectURI)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	if claims, err := parseIDTokenClaims(resp.IDToken); err == nil && claims.homeAccountID() != "" {
		c.cache.Put(accountID, Account{
			HomeAccountID: claims.homeAccountID(),
			Username:      claims.username(),
			RefreshToken:  resp.RefreshToken,
			AccessToken:   resp.AccessToken,
			ExpiresAt:     resp.Expiry,
		})
	} else if err != nil {
		// The descriptor fallback still works off the raw response.
		logger.Warn("microsoft: could not read id token claims for account %s: %v", accountID, err)
	}

	blob, err := c.cache.Serialize(accountID)
	if err != nil {
		return err
	}

	update := domain.CredentialUpdate{
		MicrosoftTokenResponse: domain.String(string(raw)),
		MicrosoftRefreshToken:  domain.String(resp.RefreshToken),
		MicrosoftCache:         domain.String(blob),
	}
	if err := c.store.Update(ctx, accountID, update); err != nil {
		logger.Error("microsoft: failed to persist token response for account %s: %v", accountID, err)
		return fmt.Errorf("persist token response: %w", err)
	}

	return nil
}

// AccessToken acquires an access token for the account.
//
// Protocol: load the persisted cache blob, silently refresh against the
// first cached account, fall back to the account descriptor stored inside
// the original token response, and as a last resort return the previously
// stored access token verbatim along with domain.ErrStaleToken. Only when no
// credential material exists at all does it fail with domain.ErrNotConnected.
func (c *Client) AccessToken(ctx context.Context, accountID string) (string, error) {
	creds, err := c.bridge.Load(ctx, accountID)
	if err != nil {
		return "", err
	}
	if creds == nil || !creds.HasMicrosoft() {
		return "", domain.ErrNotConnected
	}

	// Tier 1: silent acquisition against the first cached account.
	if accounts := c.cache.Accounts(accountID); len(accounts) > 0 {
		token, err := c.acquireSilent(ctx, accountID, accounts[0])
		if err == nil {
			return token, nil
		}
		logger.Warn("microsoft: silent acquisition failed for account %s: %v", accountID, err)
	}

	// Tier 2: the account descriptor inside the persisted token response.
	var stored TokenResponse
	if creds.MicrosoftTokenResponse != "" {
		if err := json.Unmarshal([]byte(creds.MicrosoftTokenResponse), &stored); err != nil {
			logger.Warn("microsoft: unreadable stored token response for account %s: %v", accountID, err)
		} else if stored.RefreshToken != "" {
			token, err := c.acquireFromStoredResponse(ctx, accountID, &stored)
			if err == nil {
				return token, nil
			}
			logger.Warn("microsoft: descriptor refresh failed for account %s: %v", accountID, err)
		}
	}

	// Tier 3: the stored access token verbatim. It may be expired; the
	// sentinel tells callers a failure with it is retryable after reconnect,
	// not fatal.
	if stored.AccessToken != "" {
		return stored.AccessToken, domain.ErrStaleToken
	}

	return "", fmt.Errorf("%w: microsoft", domain.ErrTokenRefreshFailed)
}

// acquireSilent refreshes against a cached account and records the rotated
// refresh token. The bridge persists the blob only if the cache changed.
func (c *Client) acquireSilent(ctx context.Context, accountID string, acct Account) (string, error) {
	resp, err := refreshToken(ctx, c.tokenURL, c.cfg.ClientID, c.cfg.ClientSecret, acct.RefreshToken)
	if err != nil {
		return "", err
	}

	if resp.RefreshToken != "" {
		acct.RefreshToken = resp.RefreshToken
	}
	acct.AccessToken = resp.AccessToken
	acct.ExpiresAt = resp.Expiry
	c.cache.Put(accountID, acct)

	if err := c.bridge.SaveIfChanged(ctx, accountID); err != nil {
		// The fresh token is still valid for this operation; the failure
		// has already been logged loudly by the bridge.
		return resp.AccessToken, nil
	}

	return resp.AccessToken, nil
}

// acquireFromStoredResponse refreshes using the original token response and
// seeds the cache with the recovered account.
func (c *Client) acquireFromStoredResponse(ctx context.Context, accountID string, stored *TokenResponse) (string, error) {
	resp, err := refreshToken(ctx, c.tokenURL, c.cfg.ClientID, c.cfg.ClientSecret, stored.RefreshToken)
	if err != nil {
		return "", err
	}

	acct := Account{
		RefreshToken: stored.RefreshToken,
		AccessToken:  resp.AccessToken,
		ExpiresAt:    resp.Expiry,
	}
	if claims, cerr := parseIDTokenClaims(stored.IDToken); cerr == nil {
		acct.HomeAccountID = claims.homeAccountID()
		acct.Username = claims.username()
	}
	if resp.RefreshToken != "" {
		acct.RefreshToken = resp.RefreshToken
	}
	if acct.HomeAccountID != "" {
		c.cache.Put(accountID, acct)
		if err := c.bridge.SaveIfChanged(ctx, accountID); err != nil {
			return resp.AccessToken, nil
		}
	}

	return resp.AccessToken, nil
}

// ListEvents returns calendar events between from and to.
func (c *Client) ListEvents(ctx context.Context, accountID string, from, to time.Time) ([]domain.Event, error) {
	token, stale, err := c.token(ctx, accountID)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/me/calendarView?startDateTime=%s&endDateTime=%s&$orderby=start/dateTime&$top=50",
		c.baseURL,
		url.QueryEscape(from.UTC().Format(time.RFC3339)),
		url.QueryEscape(to.UTC().Format(time.RFC3339)))

	var list graphEventList
	if err := c.doJSON(ctx, c.calendarLimiter, http.MethodGet, endpoint, token, stale, nil, &list); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(list.Value))
	for i := range list.Value {
		events = append(events, list.Value[i].toEvent())
	}
	return events, nil
}

// CreateEvent creates a calendar event, optionally as a Teams online
// meeting. Remote errors are propagated unchanged; the scheduler owns the
// fallback policy.
func (c *Client) CreateEvent(ctx context.Context, accountID string, req domain.EventRequest) (*domain.EventResult, error) {
	token, stale, err := c.token(ctx, accountID)
	if err != nil {
		return nil, err
	}

	body := createEventRequest{
		Subject: req.Summary,
		Start:   graphTime(req.Start),
		End:     graphTime(req.End),
	}

	content := req.Description
	if req.MeetingLink != "" {
		content = content + "<br/><br/>Join: <a href=\"" + req.MeetingLink + "\">" + req.MeetingLink + "</a>"
	}
	if content != "" {
		body.Body = &graphItemBody{ContentType: "HTML", Content: content}
	}

	for _, a := range req.Attendees {
		body.Attendees = append(body.Attendees, attendee(a))
	}

	// Never both: a supplied link wins over provider conferencing.
	if req.WithConference && req.MeetingLink == "" {
		body.IsOnlineMeeting = true
		body.OnlineMeetingProvider = "teamsForBusiness"
	}

	var created graphEvent
	endpoint := c.baseURL + "/me/events"
	if err := c.doJSON(ctx, c.calendarLimiter, http.MethodPost, endpoint, token, stale, body, &created); err != nil {
		return nil, err
	}

	return created.toEventResult(), nil
}

// SendEmail sends a notification email via Graph. A throttled send is
// surfaced as ErrRateLimited so callers can report the Outlook daily send
// limit distinctly.
func (c *Client) SendEmail(ctx context.Context, accountID string, email domain.OutboundEmail) error {
	token, stale, err := c.token(ctx, accountID)
	if err != nil {
		return err
	}

	body := sendMailRequest{
		Message: sendMailMessage{
			Subject:      email.Subject,
			Body:         graphItemBody{ContentType: "HTML", Content: email.HTMLBody},
			ToRecipients: []graphRecipient{recipient(email.To)},
		},
		SaveToSentItems: true,
	}

	endpoint := c.baseURL + "/me/sendMail"
	return c.doJSON(ctx, c.mailLimiter, http.MethodPost, endpoint, token, stale, body, nil)
}

// ListMessages returns recent messages, optionally filtered by a search query.
func (c *Client) ListMessages(ctx context.Context, accountID, query string, max int) ([]domain.Message, error) {
	token, stale, err := c.token(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if max <= 0 {
		max = 25
	}
	endpoint := c.baseURL + "/me/messages?$top=" + strconv.Itoa(max)
	if query != "" {
		endpoint += "&$search=" + url.QueryEscape(`"`+query+`"`)
	}

	var list graphMessageList
	if err := c.doJSON(ctx, c.mailLimiter, http.MethodGet, endpoint, token, stale, nil, &list); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(list.Value))
	for i := range list.Value {
		messages = append(messages, list.Value[i].toMessage())
	}
	return messages, nil
}

// GetThread returns every message in an Outlook conversation, oldest first.
func (c *Client) GetThread(ctx context.Context, accountID, threadID string) ([]domain.Message, error) {
	token, stale, err := c.token(ctx, accountID)
	if err != nil {
		return nil, err
	}

	filter := url.QueryEscape("conversationId eq '" + threadID + "'")
	endpoint := c.baseURL + "/me/messages?$filter=" + filter + "&$orderby=receivedDateTime"

	var list graphMessageList
	if err := c.doJSON(ctx, c.mailLimiter, http.MethodGet, endpoint, token, stale, nil, &list); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(list.Value))
	for i := range list.Value {
		messages = append(messages, list.Value[i].toMessage())
	}
	return messages, nil
}

// token acquires an access token and separates the stale-token signal from
// hard failures.
func (c *Client) token(ctx context.Context, accountID string) (token string, stale bool, err error) {
	token, err = c.AccessToken(ctx, accountID)
	if errors.Is(err, domain.ErrStaleToken) {
		return token, true, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, false, nil
}

// doJSON performs a Graph request with rate limiting and decodes the
// response into out (if non-nil). An unauthorised response obtained with a
// stale token is reported as ErrStaleToken: retryable after reconnect.
func (c *Client) doJSON(
	ctx context.Context,
	limiter *RateLimiter,
	method, endpoint, token string,
	stale bool,
	body, out any,
) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		limiter.RecordRateLimitError(retryAfter)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if IsUnauthorised(resp.StatusCode) && stale {
			return fmt.Errorf("%w: graph rejected the stored token", domain.ErrStaleToken)
		}
		if wrapped := WrapError(resp.StatusCode); wrapped != nil {
			return fmt.Errorf("graph request failed with status %d: %w", resp.StatusCode, wrapped)
		}
		return fmt.Errorf("graph request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}
