// Package gateway provides the authenticated HTTP caller used for every
// downstream request against the test hub's REST surface. It attaches the
// Authorization header obtained from an auth.Provider, plus a fixed
// User-Agent and Accept header, and maps non-2xx answers to typed errors.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrchris2000/mcp-devops-test/internal/auth"
	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

// requestTimeout bounds a single downstream REST call. Archive downloads use
// downloadTimeout instead, since report archives can be large.
const (
	requestTimeout  = 60 * time.Second
	downloadTimeout = 5 * time.Minute
)

// StatusError indicates the test hub answered with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, body)
}

// Client issues authenticated requests against the test hub.
type Client struct {
	baseURL    *url.URL
	provider   auth.Provider
	httpClient *http.Client
	userAgent  string
}

// New creates a gateway client for the given hub base URL. The version is
// stamped into the User-Agent header of every request.
func New(baseURL string, provider auth.Provider, version string) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: must include scheme and host", baseURL)
	}

	return &Client{
		baseURL:    base,
		provider:   provider,
		httpClient: &http.Client{Timeout: requestTimeout},
		userAgent:  "devops-test-mcp/" + version,
	}, nil
}

// SetHTTPClient overrides the underlying HTTP client, for tests.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the configured hub base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// GetJSON issues an authenticated GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, err := c.do(ctx, "GET", path, query, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

// PostJSON issues an authenticated POST with a JSON body and decodes the
// JSON response into out (out may be nil).
func (c *Client) PostJSON(ctx context.Context, path string, payload, out interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	body, err := c.do(ctx, "POST", path, nil, encoded)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

// GetText issues an authenticated GET and returns the raw response body as a
// string, for log and plain-text report endpoints.
func (c *Client) GetText(ctx context.Context, path string, query url.Values) (string, error) {
	body, err := c.do(ctx, "GET", path, query, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Download streams an authenticated GET into a file under destDir and
// returns the file path. The file name is derived from the request path.
func (c *Client) Download(ctx context.Context, path string, destDir string) (string, error) {
	req, err := c.newRequest(ctx, "GET", path, nil, nil)
	if err != nil {
		return "", err
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download from %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := os.MkdirAll(destDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	name := filepath.Base(strings.TrimSuffix(path, "/"))
	if name == "" || name == "." {
		name = "download"
	}
	destPath := filepath.Join(destDir, name)

	f, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		return "", fmt.Errorf("download to %s failed: %w", destPath, err)
	}

	logging.Debug("Gateway", "Downloaded %d bytes from %s to %s", written, path, destPath)
	return destPath, nil
}

// do issues a request and returns the response body, mapping non-2xx
// statuses to *StatusError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Debug("Gateway", "Request failed: %s %s status=%d", method, path, resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// newRequest builds an authenticated request for a hub-relative path.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload []byte) (*http.Request, error) {
	header, err := c.provider.AuthorizationHeader(ctx)
	if err != nil {
		return nil, err
	}

	u := *c.baseURL
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	req.Header.Set("Authorization", header)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
