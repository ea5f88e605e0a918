package httputil

import (
	"net/http"
	"time"

	aterrors "github.com/syslex/artitracker/pkg/errors"
)

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 30 * time.Second

// NewClient returns an http.Client with [DefaultTimeout].
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// CheckStatus maps an HTTP status code to a coded error. 2xx codes return
// nil. Server errors and 429 are wrapped in [RetryableError].
func CheckStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return aterrors.New(aterrors.ErrCodeUnauthorized, "endpoint rejected the API key (status %d)", code)
	case code == http.StatusForbidden:
		return aterrors.New(aterrors.ErrCodeForbidden, "endpoint denied access (status %d)", code)
	case code == http.StatusNotFound:
		return aterrors.New(aterrors.ErrCodeNotFound, "endpoint not found (status %d)", code)
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return aterrors.New(aterrors.ErrCodeInvalidReport, "endpoint rejected the report (status %d)", code)
	case code == http.StatusTooManyRequests || code >= 500:
		return &RetryableError{Err: aterrors.New(aterrors.ErrCodeNetwork, "endpoint unavailable (status %d)", code)}
	default:
		return aterrors.New(aterrors.ErrCodeNetwork, "unexpected status %d", code)
	}
}
