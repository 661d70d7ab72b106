package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// defaultHTTPTimeout bounds token endpoint calls when the caller supplies no
// HTTP client of its own.
const defaultHTTPTimeout = 30 * time.Second

// Provider supplies Authorization header values for downstream calls against
// the test hub, lazily authenticating or refreshing as needed.
type Provider interface {
	// AuthorizationHeader returns a ready-to-attach header value of the form
	// "Bearer <token>". It is the only method that returns an error for
	// authentication failures, and only when no fallback path remains.
	AuthorizationHeader(ctx context.Context) (string, error)

	// AccessToken returns a valid access token, using the cached one when it
	// is still valid and exchanging credentials otherwise.
	AccessToken(ctx context.Context) (string, error)

	// HasValidToken reports whether a usable token is currently cached.
	HasValidToken() bool

	// ClearTokens resets the cached token state.
	ClearTokens()
}

// ExchangeResult is the tagged outcome of a token exchange attempt. Exchange
// methods return it instead of raising for expected failure modes; Err is set
// only when OK is false.
type ExchangeResult struct {
	// OK reports whether a usable token is now cached.
	OK bool

	// Note carries an informational message when a soft fallback produced
	// the token (DirectProvider only).
	Note string

	// Err describes the failure when OK is false. It is an *ExchangeError
	// or a *NetworkError.
	Err error
}

// tokenResponse is the JSON body returned by both token endpoints on success.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// errorResponse is the JSON error shape used by the identity broker.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// exchangeError builds an *ExchangeError from a non-2xx response body,
// synthesizing an "unknown" code when the body is not valid JSON.
func exchangeError(statusCode int, body []byte) *ExchangeError {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &ExchangeError{
			StatusCode:  statusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}
	return &ExchangeError{
		StatusCode:  statusCode,
		Code:        "unknown",
		Description: strings.TrimSpace(string(body)),
	}
}

// isSuccess reports whether an HTTP status code is in the 2xx range.
func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}
