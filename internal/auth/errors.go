package auth

import "fmt"

// ConfigError indicates a required credential or setting was missing at
// provider construction. It is fatal and never retried.
type ConfigError struct {
	Field string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required credential: %s", e.Field)
}

// ExchangeError indicates a token endpoint answered with a non-2xx status.
// Code and Description carry the broker's error / error_description fields
// when the response body was parseable JSON; otherwise Code is "unknown" and
// Description holds the raw body.
type ExchangeError struct {
	StatusCode  int
	Code        string
	Description string
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token exchange failed with status %d: %s (%s)", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("token exchange failed with status %d: %s", e.StatusCode, e.Code)
}

// NetworkError indicates a transport-level failure before any response was
// obtained from a token endpoint.
type NetworkError struct {
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("token endpoint unreachable: %v", e.Err)
}

// Unwrap returns the underlying transport error for error chain inspection.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
