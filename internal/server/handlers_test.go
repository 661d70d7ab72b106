package server

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrchris2000/mcp-devops-test/internal/gateway"
	"github.com/mrchris2000/mcp-devops-test/internal/testhub"
)

type staticProvider struct{}

func (staticProvider) AuthorizationHeader(ctx context.Context) (string, error) {
	return "Bearer tok", nil
}
func (staticProvider) AccessToken(ctx context.Context) (string, error) { return "tok", nil }
func (staticProvider) HasValidToken() bool                             { return true }
func (staticProvider) ClearTokens()                                    {}

// hubFixture serves the REST fixtures the handlers exercise.
func hubFixture(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/projects/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/projects/":
			fmt.Fprint(w, `{"content":[{"id":"p-1","name":"Payments"}],"totalElements":1}`)
		case "/rest/projects/p-1/assets/":
			fmt.Fprint(w, `{"content":[{"id":"a-1","name":"Login flow","external_type":"APISUITE"}],"totalElements":1}`)
		case "/rest/projects/p-1/executions/":
			fmt.Fprint(w, `{"id":"exec-1","status":"RUNNING"}`)
		case "/rest/projects/p-1/executions/exec-1":
			fmt.Fprint(w, `{"id":"exec-1","status":"COMPLETE","resultId":"res-1"}`)
		case "/rest/projects/p-1/results/":
			fmt.Fprint(w, `{"content":[{"id":"res-1","name":"Login flow","status":"COMPLETE","verdict":"PASS"}],"totalElements":1}`)
		case "/rest/projects/p-1/results/res-1":
			fmt.Fprint(w, `{"id":"res-1","name":"Login flow","status":"COMPLETE","verdict":"PASS"}`)
		case "/rest/projects/p-1/results/res-1/log":
			fmt.Fprint(w, "step 1: ok")
		case "/rest/projects/p-1/results/res-1/report.zip":
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			entry, err := zw.Create("report.html")
			require.NoError(t, err)
			_, err = entry.Write([]byte("<html>PASS</html>"))
			require.NoError(t, err)
			require.NoError(t, zw.Close())
			_, _ = w.Write(buf.Bytes())
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	return mux
}

func newTestServer(t *testing.T) *MCPServer {
	t.Helper()
	srv := httptest.NewServer(hubFixture(t))
	t.Cleanup(srv.Close)

	gw, err := gateway.New(srv.URL, staticProvider{}, "test")
	require.NoError(t, err)

	return NewMCPServer(testhub.NewClient(gw), "test", t.TempDir())
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	content, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return content.Text
}

func TestHandleListProjects(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListProjects(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Payments")
}

func TestHandleListTests(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListTests(context.Background(), callRequest(map[string]interface{}{
		"project": "Payments",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Login flow")
}

func TestHandleListTests_MissingArgument(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListTests(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "project is required")
}

func TestHandleRunTest(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleRunTest(context.Background(), callRequest(map[string]interface{}{
		"project": "Payments",
		"test_id": "a-1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Execution exec-1: RUNNING")
}

func TestHandleGetExecutionStatus(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetExecutionStatus(context.Background(), callRequest(map[string]interface{}{
		"project":      "p-1",
		"execution_id": "exec-1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := textContent(t, result)
	assert.Contains(t, text, "COMPLETE")
	assert.Contains(t, text, "res-1")
}

func TestHandleListResults(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListResults(context.Background(), callRequest(map[string]interface{}{
		"project": "Payments",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "PASS")
}

func TestHandleGetResult(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetResult(context.Background(), callRequest(map[string]interface{}{
		"project":   "Payments",
		"result_id": "res-1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "Verdict: PASS")
}

func TestHandleGetTestLog(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetTestLog(context.Background(), callRequest(map[string]interface{}{
		"project":   "Payments",
		"result_id": "res-1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "step 1: ok")
}

func TestHandleDownloadReport(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleDownloadReport(context.Background(), callRequest(map[string]interface{}{
		"project":   "Payments",
		"result_id": "res-1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := textContent(t, result)
	assert.Contains(t, text, "report.zip")
	assert.Contains(t, text, "report.html")
}

func TestHandleUnknownProject(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListTests(context.Background(), callRequest(map[string]interface{}{
		"project": "nope",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "not found")
}
