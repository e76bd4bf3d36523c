package microsoft

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Microsoft OAuth constants.
const (
	defaultAuthURL = "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"
	//nolint:gosec // G101: Not credentials, OAuth endpoint URL
	defaultTokenURL = "https://login.microsoftonline.com/common/oauth2/v2.0/token"
)

// defaultScopes are the OAuth scopes requested on connect.
// Includes all scopes upfront to avoid re-authorization.
var defaultScopes = []string{
	"openid",
	"profile",
	"email",
	"offline_access",      // Required for refresh tokens
	"User.Read",           // User profile
	"Mail.Read",           // Outlook mail
	"Mail.Send",           // Interview notifications
	"Calendars.ReadWrite", // Calendar events and Teams meetings
}

// TokenResponse is the raw response from the Microsoft token endpoint.
// The whole response is persisted after code exchange: silent refresh falls
// back to the account descriptor derived from the id token when the cache
// holds no accounts, so a bare refresh-token string is not enough.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`

	Expiry time.Time `json:"-"`
}

// buildAuthURL constructs the Microsoft OAuth authorization URL.
// Includes offline_access scope to ensure refresh tokens are returned.
func buildAuthURL(authURL, clientID, redirectURI, state string) string {
	if authURL == "" {
		authURL = defaultAuthURL
	}

	params := url.Values{
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(defaultScopes, " ")},
		"state":         {state},
		// Microsoft-specific: response_mode=query for easier code extraction
		"response_mode": {"query"},
	}

	return authURL + "?" + params.Encode()
}

// exchangeCode exchanges an authorization code for tokens.
func exchangeCode(
	ctx context.Context,
	tokenURL, clientID, clientSecret, code, redirectURI string,
) (*TokenResponse, []byte, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", clientID)
	data.Set("client_secret", clientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("scope", strings.Join(defaultScopes, " "))

	return postTokenRequest(ctx, tokenURL, data)
}

// refreshToken exchanges a refresh token for a fresh access token.
// Microsoft may rotate the refresh token in the response.
func refreshToken(
	ctx context.Context,
	tokenURL, clientID, clientSecret, token string,
) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", clientID)
	if clientSecret != "" {
		data.Set("client_secret", clientSecret)
	}
	data.Set("refresh_token", token)
	data.Set("scope", strings.Join(defaultScopes, " "))

	resp, _, err := postTokenRequest(ctx, tokenURL, data)
	return resp, err
}

// postTokenRequest posts a form to the token endpoint and decodes the
// response. The raw body is returned alongside for persistence.
func postTokenRequest(ctx context.Context, tokenURL string, data url.Values) (*TokenResponse, []byte, error) {
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, nil, fmt.Errorf("token error: %s - %s", errResp.Error, errResp.Description)
		}
		return nil, nil, fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, nil, fmt.Errorf("decode token response: %w", err)
	}

	// Calculate expiry
	if tokenResp.ExpiresIn > 0 {
		tokenResp.Expiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	}

	return &tokenResp, body, nil
}

// idTokenClaims are the subset of id token claims used to build the
// account descriptor for silent refresh.
type idTokenClaims struct {
	ObjectID          string `json:"oid"`
	TenantID          string `json:"tid"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

// parseIDTokenClaims decodes the payload of an id token without verifying
// the signature. The token came straight from the token endpoint over TLS;
// it is only read for the account descriptor.
func parseIDTokenClaims(idToken string) (*idTokenClaims, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed id token")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode id token payload: %w", err)
	}

	var claims idTokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("unmarshal id token claims: %w", err)
	}

	return &claims, nil
}

// homeAccountID builds the Microsoft home account identifier from claims.
func (c *idTokenClaims) homeAccountID() string {
	if c.ObjectID == "" {
		return ""
	}
	return c.ObjectID + "." + c.TenantID
}

// username returns the best available account name from claims.
func (c *idTokenClaims) username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Email
}
