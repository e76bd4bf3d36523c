// Package zoom implements the Zoom provider client: OAuth and scheduled
// meeting creation.
//
// Zoom rotates the refresh token on every token grant and the old one is
// invalidated immediately, so the rotated token is persisted before the
// access token is used. A lost rotation strands the account.
package zoom

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
	"strings"
	"time"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/ports/driven"
	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/logger"
)

// Ensure Client implements the capability interfaces it claims.
var (
	_ driven.AuthClient    = (*Client)(nil)
	_ driven.MeetingClient = (*Client)(nil)
)

// Zoom endpoints.
const (
	defaultAuthURL  = "https://zoom.us/oauth/authorize"
	defaultTokenURL = "https://zoom.us/oauth/token" //nolint:gosec // G101: Not credentials, OAuth endpoint URL
	defaultAPIURL   = "https://api.zoom.us/v2"
)

// Config holds the Zoom OAuth app credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Configured reports whether the OAuth app credentials are present.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Client is the Zoom provider client.
type Client struct {
	config     Config
	store      driven.CredentialStore
	httpClient *http.Client

	// Overridable in tests.
	authURL  string
	tokenURL string
	apiURL   string
}

// New creates a Zoom provider client over the given credential store.
func New(cfg Config, store driven.CredentialStore) *Client {
	return &Client{
		config:     cfg,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		authURL:    defaultAuthURL,
		tokenURL:   defaultTokenURL,
		apiURL:     defaultAPIURL,
	}
}

// AuthURL builds the authorization URL with a caller-supplied opaque state.
func (c *Client) AuthURL(state string) (string, error) {
	if !c.config.Configured() {
		return "", fmt.Errorf("%w: zoom client id/secret missing", domain.ErrNotConfigured)
	}

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.config.ClientID)
	params.Set("redirect_uri", c.config.RedirectURI)
	params.Set("state", state)

	return c.authURL + "?" + params.Encode(), nil
}

// ExchangeCode exchanges an authorization code and persists the refresh token.
func (c *Client) ExchangeCode(ctx context.Context, accountID, code string) error {
	if !c.config.Configured() {
		return fmt.Errorf("%w: zoom client id/secret missing", domain.ErrNotConfigured)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.config.RedirectURI)

	token, err := c.postTokenRequest(ctx, form)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("zoom returned no refresh token")
	}

	update := domain.CredentialUpdate{ZoomRefreshToken: domain.String(token.RefreshToken)}
	if err := c.store.Update(ctx, accountID, update); err != nil {
		logger.Error("zoom: failed to persist refresh token for account %s: %v", accountID, err)
		return fmt.Errorf("persist refresh token: %w", err)
	}

	return nil
}

// tokenResponse is the Zoom OAuth token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// accessToken refreshes the stored token and persists the rotation. The
// new refresh token is written before the access token is returned; if the
// write fails the access token is withheld, since using it while the
// rotation is unpersisted would strand the account on the next call.
func (c *Client) accessToken(ctx context.Context, accountID string) (string, error) {
	creds, err := c.store.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotConnected
		}
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if !creds.HasZoom() {
		return "", domain.ErrNotConnected
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", creds.ZoomRefreshToken)

	token, err := c.postTokenRequest(ctx, form)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenRefreshFailed, err)
	}

	if token.RefreshToken != "" && token.RefreshToken != creds.ZoomRefreshToken {
		update := domain.CredentialUpdate{ZoomRefreshToken: domain.String(token.RefreshToken)}
		if err := c.store.Update(ctx, accountID, update); err != nil {
			logger.Error("zoom: failed to persist rotated refresh token for account %s, account may need reconnecting: %v", accountID, err)
			return "", fmt.Errorf("persist rotated refresh token: %w", err)
		}
	}

	return token.AccessToken, nil
}

// postTokenRequest posts a form to the token endpoint with Basic auth.
func (c *Client) postTokenRequest(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.config.ClientID, c.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, ErrRefreshRejected
		}
		return nil, WrapError(resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access token")
	}

	return &token, nil
}

// meetingRequest is the create-meeting payload.
type meetingRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Agenda    string          `json:"agenda,omitempty"`
	Timezone  string          `json:"timezone"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	JoinBeforeHost bool `json:"join_before_host"`
	WaitingRoom    bool `json:"waiting_room"`
}

// meetingResponse is the create-meeting response.
type meetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
	Topic   string `json:"topic"`
}

// meetingTypeScheduled is a scheduled (non-recurring) meeting.
const meetingTypeScheduled = 2

// CreateMeeting creates a scheduled meeting and returns its join URL.
func (c *Client) CreateMeeting(ctx context.Context, accountID string, req domain.MeetingRequest) (*domain.Meeting, error) {
	token, err := c.accessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}

	minutes := int(req.Duration.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	payload := meetingRequest{
		Topic:     req.Topic,
		Type:      meetingTypeScheduled,
		StartTime: req.Start.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  minutes,
		Agenda:    req.Agenda,
		Timezone:  "UTC",
		Settings: meetingSettings{
			JoinBeforeHost: true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal meeting request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/users/me/meetings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, WrapError(resp.StatusCode)
	}

	var meeting meetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&meeting); err != nil {
		return nil, fmt.Errorf("decode meeting response: %w", err)
	}

	return &domain.Meeting{
		ID:      strconv.FormatInt(meeting.ID, 10),
		JoinURL: meeting.JoinURL,
		Topic:   meeting.Topic,
	}, nil
}
