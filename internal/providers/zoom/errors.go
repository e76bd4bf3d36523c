package zoom

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

// Sentinel errors for Zoom API failures.
var (
	// ErrUnauthorized indicates the access token was rejected.
	ErrUnauthorized = errors.New("zoom authentication failed")

	// ErrRefreshRejected indicates the refresh token was rejected. Zoom
	// refresh tokens are single use; a rejected one usually means a prior
	// rotation was lost and the account must be reconnected.
	ErrRefreshRejected = errors.New("zoom refresh token rejected, reconnect the account")

	// ErrNotFound indicates the requested meeting does not exist.
	ErrNotFound = errors.New("zoom resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = fmt.Errorf("%w: zoom", domain.ErrRateLimited)
)

// WrapError converts an HTTP status code into an appropriate error.
func WrapError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("zoom API error: status %d", statusCode)
	}
}

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
