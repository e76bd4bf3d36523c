package domain

import "time"

// AccountCredentials holds every provider credential for a single recruiter
// account. One row per account; columns for a disconnected provider are empty.
//
// At most one of the Google and Microsoft identities is treated as active for
// calendar and mail routing. Connecting one clears the other. Zoom and SMTP
// are orthogonal: Zoom only generates meeting links, SMTP only sends mail.
type AccountCredentials struct {
	// AccountID is the recruiter account this record belongs to.
	AccountID string `json:"account_id"`

	// GoogleRefreshToken is the long-lived Google refresh token.
	GoogleRefreshToken string `json:"google_refresh_token,omitempty"`

	// MicrosoftRefreshToken is the latest Microsoft refresh token. Kept for
	// visibility only; silent refresh runs off the cache blob and the token
	// response below.
	MicrosoftRefreshToken string `json:"microsoft_refresh_token,omitempty"`
	// MicrosoftCache is the serialized multi-account token cache blob.
	// Opaque outside the microsoft provider package.
	MicrosoftCache string `json:"microsoft_cache,omitempty"`
	// MicrosoftTokenResponse is the raw code-exchange response. Silent
	// refresh falls back to the account descriptor inside it when the cache
	// holds no accounts, so the whole response is persisted, not just the
	// refresh token.
	MicrosoftTokenResponse string `json:"microsoft_token_response,omitempty"`

	// ZoomRefreshToken is the single-use Zoom refresh token. Rotated on
	// every meeting creation and must be re-persisted immediately.
	ZoomRefreshToken string `json:"zoom_refresh_token,omitempty"`

	// SMTP settings for outbound mail via a custom server.
	SMTPHost string `json:"smtp_host,omitempty"`
	SMTPPort int    `json:"smtp_port,omitempty"`
	SMTPUser string `json:"smtp_user,omitempty"`
	SMTPPass string `json:"smtp_pass,omitempty"`
	SMTPFrom string `json:"smtp_from,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasGoogle reports whether a Google identity is connected.
func (c *AccountCredentials) HasGoogle() bool {
	return c.GoogleRefreshToken != ""
}

// HasMicrosoft reports whether a Microsoft identity is connected.
func (c *AccountCredentials) HasMicrosoft() bool {
	return c.MicrosoftRefreshToken != "" || c.MicrosoftCache != "" || c.MicrosoftTokenResponse != ""
}

// HasZoom reports whether a Zoom refresh token is available.
func (c *AccountCredentials) HasZoom() bool {
	return c.ZoomRefreshToken != ""
}

// HasSMTP reports whether a custom SMTP server is fully configured.
// Host, user and password are all required.
func (c *AccountCredentials) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// CredentialUpdate is an explicit partial update for AccountCredentials.
// Nil fields are left untouched; a pointer to the empty string clears the
// column. This replaces building SQL from whichever request fields happened
// to be present.
type CredentialUpdate struct {
	GoogleRefreshToken     *string
	MicrosoftRefreshToken  *string
	MicrosoftCache         *string
	MicrosoftTokenResponse *string
	ZoomRefreshToken       *string
	SMTPHost               *string
	SMTPPort               *int
	SMTPUser               *string
	SMTPPass               *string
	SMTPFrom               *string
}

// IsEmpty reports whether the update would change nothing.
func (u *CredentialUpdate) IsEmpty() bool {
	return u.GoogleRefreshToken == nil &&
		u.MicrosoftRefreshToken == nil &&
		u.MicrosoftCache == nil &&
		u.MicrosoftTokenResponse == nil &&
		u.ZoomRefreshToken == nil &&
		u.SMTPHost == nil &&
		u.SMTPPort == nil &&
		u.SMTPUser == nil &&
		u.SMTPPass == nil &&
		u.SMTPFrom == nil
}

// ClearGoogle returns an update that disconnects the Google identity.
func ClearGoogle() CredentialUpdate {
	empty := ""
	return CredentialUpdate{GoogleRefreshToken: &empty}
}

// ClearMicrosoft returns an update that disconnects the Microsoft identity,
// including the cache blob and the stored token response.
func ClearMicrosoft() CredentialUpdate {
	empty := ""
	return CredentialUpdate{
		MicrosoftRefreshToken:  &empty,
		MicrosoftCache:         &empty,
		MicrosoftTokenResponse: &empty,
	}
}

// ClearZoom returns an update that disconnects Zoom.
func ClearZoom() CredentialUpdate {
	empty := ""
	return CredentialUpdate{ZoomRefreshToken: &empty}
}

// String returns a string pointer, for building updates.
func String(s string) *string { return &s }

// Int returns an int pointer, for building updates.
func Int(i int) *int { return &i }
