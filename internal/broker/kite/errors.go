package kite

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error envelope returned by the Kite Connect API. The
// error_type field classifies the failure (TokenException, InputException,
// NetworkException, ...).
type APIError struct {
	Status    int    `json:"-"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

func (e *APIError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("kite api error %d (%s): %s", e.Status, e.ErrorType, e.Message)
	}
	return fmt.Sprintf("kite api error %d: %s", e.Status, e.Message)
}

// Error types returned by the API.
const (
	ErrTypeToken      = "TokenException"
	ErrTypeUser       = "UserException"
	ErrTypeOrder      = "OrderException"
	ErrTypeInput      = "InputException"
	ErrTypeMargin     = "MarginException"
	ErrTypeNetwork    = "NetworkException"
	ErrTypeGeneral    = "GeneralException"
	ErrTypePermission = "PermissionException"
)

// ErrNotAuthenticated is returned before any request when no access token
// is present. Authentication is a daily manual step with Kite.
var ErrNotAuthenticated = errors.New("not authenticated: no access token")

// IsRetryableError reports whether a request may be retried: rate limits,
// gateway failures and transient exchange connectivity problems.
func IsRetryableError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return apiErr.ErrorType == ErrTypeNetwork
}

// IsAuthError reports whether the session token is invalid or expired.
// These are never retried; the operator has to re-authenticate.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorType == ErrTypeToken || apiErr.Status == http.StatusForbidden
}

// IsOrderError reports whether the exchange rejected the order itself.
func IsOrderError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorType == ErrTypeOrder
}
