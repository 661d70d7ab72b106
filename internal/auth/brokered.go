package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

// DefaultRealm is the identity broker realm used when none is configured.
const DefaultRealm = "testserver"

// brokerTokenPath is the Keycloak-style token endpoint path template.
const brokerTokenPath = "/auth/realms/%s/protocol/openid-connect/token"

// BrokeredConfig carries the construction inputs for a BrokeredProvider.
type BrokeredConfig struct {
	// ServerURL is the identity broker base location (scheme + host).
	ServerURL string

	// Realm is the broker realm. Defaults to DefaultRealm when empty.
	Realm string

	// ClientID identifies this client to the broker. Required.
	ClientID string

	// ClientSecret is the optional confidential-client secret.
	ClientSecret string

	// OfflineToken is the long-lived refresh-grant credential. Required.
	OfflineToken string

	// HTTPClient overrides the HTTP client used for token endpoint calls.
	HTTPClient *http.Client

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// BrokeredProvider obtains and maintains an access token by exchanging an
// offline token (and subsequently a rotating refresh token) with an identity
// broker's token endpoint, using the OAuth2 refresh_token grant.
type BrokeredProvider struct {
	tokenEndpoint string
	clientID      string
	clientSecret  string
	offlineToken  string

	state      *TokenState
	httpClient *http.Client
	now        func() time.Time

	// group collapses concurrent exchange attempts into one network call.
	group singleflight.Group
}

// NewBrokeredProvider creates a provider for the identity-broker scheme. It
// fails fast when the server URL cannot be parsed into scheme+host, or when
// the offline token or client id is absent: these are configuration errors,
// not runtime conditions, so no request is ever attempted without them.
func NewBrokeredProvider(cfg BrokeredConfig) (*BrokeredProvider, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid broker server URL %q: must include scheme and host", cfg.ServerURL)
	}
	if cfg.OfflineToken == "" {
		return nil, &ConfigError{Field: "offline token"}
	}
	if cfg.ClientID == "" {
		return nil, &ConfigError{Field: "client id"}
	}

	realm := cfg.Realm
	if realm == "" {
		realm = DefaultRealm
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	endpoint := base.Scheme + "://" + base.Host + fmt.Sprintf(brokerTokenPath, realm)

	return &BrokeredProvider{
		tokenEndpoint: endpoint,
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		offlineToken:  cfg.OfflineToken,
		state:         NewTokenState(),
		httpClient:    httpClient,
		now:           now,
	}, nil
}

// TokenEndpoint returns the derived broker token endpoint.
func (p *BrokeredProvider) TokenEndpoint() string {
	return p.tokenEndpoint
}

// HasValidToken reports whether a usable access token is cached.
func (p *BrokeredProvider) HasValidToken() bool {
	return p.state.Valid(p.now())
}

// ClearTokens resets the cached token state to all-absent.
func (p *BrokeredProvider) ClearTokens() {
	p.state.Clear()
}

// AuthenticateWithOfflineToken exchanges the configured offline token for a
// fresh access token. Expected failures (non-2xx, transport errors) are
// reported in the result, never raised.
func (p *BrokeredProvider) AuthenticateWithOfflineToken(ctx context.Context) ExchangeResult {
	logging.Debug("Auth", "Exchanging offline token at %s", p.tokenEndpoint)
	return p.exchange(ctx, p.offlineToken)
}

// RefreshAccessToken refreshes the cached access token. With no cached
// refresh token it delegates entirely to the offline-token exchange. On any
// refresh failure it falls back to the offline token rather than surfacing
// the failure: the offline token is the durable credential of last resort.
func (p *BrokeredProvider) RefreshAccessToken(ctx context.Context) ExchangeResult {
	refreshToken := p.state.RefreshToken()
	if refreshToken == "" {
		return p.AuthenticateWithOfflineToken(ctx)
	}

	logging.Debug("Auth", "Refreshing access token at %s", p.tokenEndpoint)
	res := p.exchange(ctx, refreshToken)
	if !res.OK {
		logging.Warn("Auth", "Refresh failed (%v), falling back to offline token", res.Err)
		return p.AuthenticateWithOfflineToken(ctx)
	}
	return res
}

// AccessToken returns a valid access token. The cached token is returned
// without a network call when it is still valid; otherwise the provider
// refreshes (when a refresh token is cached) or re-authenticates with the
// offline token. Concurrent callers share one exchange.
func (p *BrokeredProvider) AccessToken(ctx context.Context) (string, error) {
	if p.state.Valid(p.now()) {
		return p.state.AccessToken(), nil
	}

	v, err, _ := p.group.Do("exchange", func() (interface{}, error) {
		// Re-check inside the flight: a racing caller may have refreshed.
		if p.state.Valid(p.now()) {
			return p.state.AccessToken(), nil
		}
		res := p.RefreshAccessToken(ctx)
		if !res.OK {
			return "", res.Err
		}
		return p.state.AccessToken(), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// AuthorizationHeader returns "Bearer <token>" for downstream calls, raising
// an error only when every acquisition path has failed.
func (p *BrokeredProvider) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := p.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	return "Bearer " + token, nil
}

// exchange POSTs the refresh_token grant with the given credential and
// updates the token state on success.
func (p *BrokeredProvider) exchange(ctx context.Context, refreshToken string) ExchangeResult {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", p.clientID)
	if p.clientSecret != "" {
		data.Set("client_secret", p.clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.tokenEndpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return ExchangeResult{Err: &NetworkError{Err: err}}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logging.Warn("Auth", "Token exchange transport failure: %v", err)
		return ExchangeResult{Err: &NetworkError{Err: err}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ExchangeResult{Err: &NetworkError{Err: err}}
	}

	if !isSuccess(resp.StatusCode) {
		exchErr := exchangeError(resp.StatusCode, body)
		logging.Warn("Auth", "Token exchange rejected: status=%d code=%s", resp.StatusCode, exchErr.Code)
		return ExchangeResult{Err: exchErr}
	}

	token, err := parseTokenResponse(body, p.now())
	if err != nil {
		return ExchangeResult{Err: &ExchangeError{
			StatusCode:  resp.StatusCode,
			Code:        "unknown",
			Description: fmt.Sprintf("unparseable token response: %v", err),
		}}
	}

	p.state.Set(token)
	logging.Info("Auth", "Token exchange succeeded (expires=%s)", expiryForLog(token))
	return ExchangeResult{OK: true}
}

// parseTokenResponse decodes a successful token endpoint body into an
// oauth2.Token, deriving the expiry as issue time + reported lifetime.
func parseTokenResponse(body []byte, issuedAt time.Time) (*oauth2.Token, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, err
	}

	accessToken := tr.AccessToken
	if accessToken == "" {
		accessToken = tr.Token
	}
	if accessToken == "" {
		return nil, fmt.Errorf("response contains no access token")
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = issuedAt.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return token, nil
}

func expiryForLog(token *oauth2.Token) string {
	if token.Expiry.IsZero() {
		return "unknown"
	}
	return token.Expiry.UTC().Format(time.RFC3339)
}
