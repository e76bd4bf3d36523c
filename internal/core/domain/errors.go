package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates the provider's OAuth app credentials
	// (client id/secret) are missing from server configuration. Surfaced
	// as a 500; the operator must fix configuration, not the user.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrNotConnected indicates the account has no credential for the
	// requested provider. 401-class; the user must reconnect.
	ErrNotConnected = errors.New("no linked account")

	// ErrRateLimited indicates the provider throttled the request. Callers
	// surface a distinct message so users know not to retry immediately.
	ErrRateLimited = errors.New("rate limited")

	// ErrStaleToken indicates silent refresh failed and the previously
	// stored access token was returned as-is. It may still work; a
	// downstream auth failure with it means the user must reconnect. It is
	// a forced-refresh signal, not a success.
	ErrStaleToken = errors.New("stale access token, silent refresh failed")

	// ErrTokenRefreshFailed indicates a token refresh exchange failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")
)

// OutlookSendLimitMessage is the user-facing text for a throttled Microsoft
// mail send. Distinct from generic failures so users know not to retry
// immediately.
const OutlookSendLimitMessage = "Outlook daily send limit reached, try again later"
