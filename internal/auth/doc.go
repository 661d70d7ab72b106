// Package auth implements the bearer-token lifecycle for the DevOps Test MCP
// server: obtaining, caching, and refreshing access tokens against the test
// hub's token endpoints.
//
// Two provider implementations exist, one per authentication scheme:
//
//   - BrokeredProvider exchanges a long-lived offline token (and subsequently
//     a rotating refresh token) with an identity broker's OAuth2 token
//     endpoint using the refresh_token grant. When a refresh fails, it falls
//     back to the offline token, which is the durable credential of last
//     resort.
//
//   - DirectProvider exchanges a personal access token against the test
//     hub's lightweight /rest/tokens endpoint. The exchange step is optional
//     in this scheme: on 401/403 or a transport failure the personal access
//     token itself is cached as the bearer token, because the hub accepts it
//     unexchanged.
//
// Both providers share the same expiry policy: a cached token is valid while
// its expiry is more than 60 seconds away, and a token with no known expiry
// is treated as perpetually valid. The buffer guards against a token
// expiring mid-flight of the next downstream call.
//
// Internal exchange methods never return raised errors for expected failure
// modes; they return an ExchangeResult. Only AuthorizationHeader converts a
// failed result into an error, and only when no fallback path remains.
//
// Concurrent callers that both observe an invalid cached token are collapsed
// into a single network exchange via singleflight; either result is
// independently valid, so last-writer-wins on the shared state is safe.
package auth
