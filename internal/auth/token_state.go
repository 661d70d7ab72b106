package auth

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// tokenExpiryBuffer is the margin added when checking token validity.
// This accounts for clock skew, network latency, and tokens that would
// otherwise expire mid-flight of the next downstream call.
const tokenExpiryBuffer = 60 * time.Second

// TokenState holds the current access token, optional refresh token, and
// computed expiry for one provider instance. It is never persisted; its
// lifetime is the process lifetime.
//
// State is replaced only as a unit: a successful exchange writes its
// token/expiry pair atomically, and the refresh token is retained when a
// refresh response omits it. Nothing resets the state except Clear.
type TokenState struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

// NewTokenState creates an empty token state.
func NewTokenState() *TokenState {
	return &TokenState{}
}

// Set replaces the cached token. If the new token carries no refresh token,
// the previously cached refresh token is retained (brokers rotate refresh
// tokens optionally; absence means "keep using the old one").
func (s *TokenState) Set(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != nil && token.RefreshToken == "" && s.token != nil {
		token.RefreshToken = s.token.RefreshToken
	}
	s.token = token
}

// Clear resets all fields to absent.
func (s *TokenState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
}

// AccessToken returns the cached access token, or "" if absent.
func (s *TokenState) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// RefreshToken returns the cached refresh token, or "" if absent.
func (s *TokenState) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// Expiry returns the cached expiry instant. The zero time means no expiry is
// known.
func (s *TokenState) Expiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return time.Time{}
	}
	return s.token.Expiry
}

// Valid reports whether the cached token can be used at the given instant:
// an access token is present and either no expiry is known or the expiry is
// more than tokenExpiryBuffer in the future.
//
// Treating an unknown expiry as valid is deliberate: unknown expiry is rare,
// and defaulting to "invalid" would force a re-authentication on every call.
func (s *TokenState) Valid(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil || s.token.AccessToken == "" {
		return false
	}
	if s.token.Expiry.IsZero() {
		return true
	}
	return now.Add(tokenExpiryBuffer).Before(s.token.Expiry)
}
