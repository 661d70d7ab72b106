// Package testhub is the typed client for the test hub's REST surface:
// projects, executable test assets, executions, and results. The resource
// paths and payload shapes are an external contract owned by the hub; this
// package only translates them.
package testhub

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/mrchris2000/mcp-devops-test/internal/archive"
	"github.com/mrchris2000/mcp-devops-test/internal/gateway"
	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

// executableAssetTypes selects the asset types that can be launched.
const executableAssetTypes = "EXECUTABLE"

// DefaultRevision is the asset branch used when the caller names none.
const DefaultRevision = "master"

// Client issues typed calls against the hub through the gateway.
type Client struct {
	gw *gateway.Client
}

// NewClient creates a hub client on top of an authenticated gateway.
func NewClient(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// ListProjects returns all projects visible to the authenticated user.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var resp page[Project]
	if err := c.gw.GetJSON(ctx, "/rest/projects/", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return resp.Content, nil
}

// FindProject resolves a project by name (case-insensitive) or id.
func (c *Client) FindProject(ctx context.Context, nameOrID string) (*Project, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == nameOrID || strings.EqualFold(projects[i].Name, nameOrID) {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("project %q not found", nameOrID)
}

// ListTests returns the executable test assets of a project on the given
// revision (DefaultRevision when empty).
func (c *Client) ListTests(ctx context.Context, projectID, revision string) ([]TestAsset, error) {
	if revision == "" {
		revision = DefaultRevision
	}
	query := url.Values{
		"assetTypes": {executableAssetTypes},
		"revision":   {revision},
	}

	var resp page[TestAsset]
	path := fmt.Sprintf("/rest/projects/%s/assets/", projectID)
	if err := c.gw.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("failed to list tests for project %s: %w", projectID, err)
	}
	return resp.Content, nil
}

// executionRequest is the launch payload for a test asset.
type executionRequest struct {
	TestAsset struct {
		AssetID  string `json:"assetId"`
		Revision string `json:"revision"`
	} `json:"testAsset"`
	CorrelationID string `json:"correlationId"`
}

// RunTest launches a test asset and returns the created execution. A
// client-side correlation id is attached so repeated launches can be told
// apart in hub logs.
func (c *Client) RunTest(ctx context.Context, projectID, assetID, revision string) (*Execution, error) {
	if revision == "" {
		revision = DefaultRevision
	}

	var req executionRequest
	req.TestAsset.AssetID = assetID
	req.TestAsset.Revision = revision
	req.CorrelationID = uuid.NewString()

	var execution Execution
	path := fmt.Sprintf("/rest/projects/%s/executions/", projectID)
	if err := c.gw.PostJSON(ctx, path, req, &execution); err != nil {
		return nil, fmt.Errorf("failed to launch test %s: %w", assetID, err)
	}

	logging.Info("TestHub", "Launched test %s in project %s (execution=%s, correlation=%s)",
		assetID, projectID, execution.ID, req.CorrelationID)
	return &execution, nil
}

// GetExecution returns the current state of an execution.
func (c *Client) GetExecution(ctx context.Context, projectID, executionID string) (*Execution, error) {
	var execution Execution
	path := fmt.Sprintf("/rest/projects/%s/executions/%s", projectID, executionID)
	if err := c.gw.GetJSON(ctx, path, nil, &execution); err != nil {
		return nil, fmt.Errorf("failed to get execution %s: %w", executionID, err)
	}
	return &execution, nil
}

// ListResults returns the results of a project, optionally filtered to one
// execution.
func (c *Client) ListResults(ctx context.Context, projectID, executionID string) ([]Result, error) {
	var query url.Values
	if executionID != "" {
		query = url.Values{"executionId": {executionID}}
	}

	var resp page[Result]
	path := fmt.Sprintf("/rest/projects/%s/results/", projectID)
	if err := c.gw.GetJSON(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("failed to list results for project %s: %w", projectID, err)
	}
	return resp.Content, nil
}

// GetResult returns one result with its optional enrichments. The artifact
// and performance fetches are independent: a failure in either is logged and
// reported via the Has* flags, never propagated.
func (c *Client) GetResult(ctx context.Context, projectID, resultID string) (*ResultDetail, error) {
	var result Result
	path := fmt.Sprintf("/rest/projects/%s/results/%s", projectID, resultID)
	if err := c.gw.GetJSON(ctx, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get result %s: %w", resultID, err)
	}

	detail := &ResultDetail{Result: result}

	if artifacts, ok := c.fetchArtifacts(ctx, projectID, resultID); ok {
		detail.Artifacts = artifacts
		detail.HasArtifacts = true
	}
	if perf, ok := c.fetchPerformance(ctx, projectID, resultID); ok {
		detail.Performance = perf
		detail.HasPerformance = true
	}

	return detail, nil
}

// GetTestLog returns the plain-text execution log of a result.
func (c *Client) GetTestLog(ctx context.Context, projectID, resultID string) (string, error) {
	path := fmt.Sprintf("/rest/projects/%s/results/%s/log", projectID, resultID)
	log, err := c.gw.GetText(ctx, path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get log for result %s: %w", resultID, err)
	}
	return log, nil
}

// DownloadReport downloads the report archive of a result into destDir,
// extracts it, and returns the archive path plus the extracted file paths.
func (c *Client) DownloadReport(ctx context.Context, projectID, resultID, destDir string) (string, []string, error) {
	path := fmt.Sprintf("/rest/projects/%s/results/%s/report.zip", projectID, resultID)
	archivePath, err := c.gw.Download(ctx, path, destDir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to download report for result %s: %w", resultID, err)
	}

	extracted, err := archive.ExtractZip(archivePath, destDir)
	if err != nil {
		return archivePath, nil, fmt.Errorf("failed to extract report archive: %w", err)
	}
	return archivePath, extracted, nil
}

func (c *Client) fetchArtifacts(ctx context.Context, projectID, resultID string) ([]Artifact, bool) {
	var resp page[Artifact]
	path := fmt.Sprintf("/rest/projects/%s/results/%s/artifacts/", projectID, resultID)
	if err := c.gw.GetJSON(ctx, path, nil, &resp); err != nil {
		logging.Debug("TestHub", "Artifact fetch for result %s skipped: %v", resultID, err)
		return nil, false
	}
	return resp.Content, true
}

func (c *Client) fetchPerformance(ctx context.Context, projectID, resultID string) (PerformanceSummary, bool) {
	var perf PerformanceSummary
	path := fmt.Sprintf("/rest/projects/%s/results/%s/performance", projectID, resultID)
	if err := c.gw.GetJSON(ctx, path, nil, &perf); err != nil {
		logging.Debug("TestHub", "Performance fetch for result %s skipped: %v", resultID, err)
		return PerformanceSummary{}, false
	}
	return perf, true
}
