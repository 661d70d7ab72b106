package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectProvider(t *testing.T, serverURL string, clock *fakeClock) *DirectProvider {
	t.Helper()
	provider, err := NewDirectProvider(DirectConfig{
		ServerURL:           serverURL,
		PersonalAccessToken: "pat-secret",
		Now:                 clock.Now,
	})
	require.NoError(t, err)
	return provider
}

func TestNewDirectProvider_Validation(t *testing.T) {
	_, err := NewDirectProvider(DirectConfig{ServerURL: "not-a-url", PersonalAccessToken: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server URL")

	_, err = NewDirectProvider(DirectConfig{ServerURL: "https://hub.example.com"})
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "personal access token", cfgErr.Field)
}

func TestNewDirectProvider_DerivesTokenEndpoint(t *testing.T) {
	provider := newDirectProvider(t, "https://hub.example.com", newFakeClock())
	assert.Equal(t, "https://hub.example.com/rest/tokens", provider.TokenEndpoint())
}

func TestDirectProvider_ExchangeMintsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer pat-secret", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"access_token":"T","expires_in":120,"token_type":"Bearer"}`)
	}))
	defer srv.Close()

	clock := newFakeClock()
	provider := newDirectProvider(t, srv.URL, clock)
	provider.tokenEndpoint = srv.URL

	res := provider.AuthenticateWithPersonalToken(context.Background())
	require.True(t, res.OK)
	assert.Empty(t, res.Note)
	assert.Equal(t, "T", provider.state.AccessToken())
	assert.Equal(t, clock.Now().Add(120*time.Second), provider.state.Expiry())
}

func TestDirectProvider_ExchangeAcceptsTokenField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"token":"alt-field","expires_in":120}`)
	}))
	defer srv.Close()

	provider := newDirectProvider(t, srv.URL, newFakeClock())
	provider.tokenEndpoint = srv.URL

	res := provider.AuthenticateWithPersonalToken(context.Background())
	require.True(t, res.OK)
	assert.Equal(t, "alt-field", provider.state.AccessToken())
}

func TestDirectProvider_ValidatingEndpointCachesPersonalToken(t *testing.T) {
	// 2xx with no token in the body: the endpoint validates rather than mints.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	clock := newFakeClock()
	provider := newDirectProvider(t, srv.URL, clock)
	provider.tokenEndpoint = srv.URL

	res := provider.AuthenticateWithPersonalToken(context.Background())
	require.True(t, res.OK)
	assert.Equal(t, "pat-secret", provider.state.AccessToken())
	assert.Equal(t, clock.Now().Add(time.Hour), provider.state.Expiry())
}

func TestDirectProvider_ForbiddenIsSoftFailure(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			clock := newFakeClock()
			provider := newDirectProvider(t, srv.URL, clock)
			provider.tokenEndpoint = srv.URL

			res := provider.AuthenticateWithPersonalToken(context.Background())
			require.True(t, res.OK)
			assert.NotEmpty(t, res.Note)
			assert.Equal(t, "pat-secret", provider.state.AccessToken())
			assert.Equal(t, clock.Now().Add(time.Hour), provider.state.Expiry())
		})
	}
}

func TestDirectProvider_OtherErrorsAreHardFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"server_error","error_description":"boom"}`)
	}))
	defer srv.Close()

	provider := newDirectProvider(t, srv.URL, newFakeClock())
	provider.tokenEndpoint = srv.URL

	res := provider.AuthenticateWithPersonalToken(context.Background())
	require.False(t, res.OK)

	var exchErr *ExchangeError
	require.ErrorAs(t, res.Err, &exchErr)
	assert.Equal(t, http.StatusInternalServerError, exchErr.StatusCode)
	assert.Equal(t, "server_error", exchErr.Code)
	assert.False(t, provider.HasValidToken())
}

func TestDirectProvider_TransportFailureSelfHeals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	provider := newDirectProvider(t, "https://hub.example.com", newFakeClock())
	provider.tokenEndpoint = srv.URL

	header, err := provider.AuthorizationHeader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer pat-secret", header)
	assert.True(t, provider.HasValidToken())
}

func TestDirectProvider_AccessTokenFastPath(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"access_token":"T","expires_in":300}`)
	}))
	defer srv.Close()

	clock := newFakeClock()
	provider := newDirectProvider(t, srv.URL, clock)
	provider.tokenEndpoint = srv.URL

	for range 3 {
		token, err := provider.AccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "T", token)
	}
	assert.Equal(t, 1, calls)

	// Past the buffer the token is re-exchanged.
	clock.Advance(241 * time.Second)
	_, err := provider.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDirectProvider_ClearTokens(t *testing.T) {
	clock := newFakeClock()
	provider := newDirectProvider(t, "https://hub.example.com", clock)
	provider.fallbackToPersonalToken("")
	require.True(t, provider.HasValidToken())

	provider.ClearTokens()
	assert.False(t, provider.HasValidToken())
}
