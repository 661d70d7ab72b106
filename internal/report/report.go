// Package report renders test hub JSON into the human-readable text returned
// by the MCP tools. Renderers are pure functions over testhub types; all I/O
// stays in the callers.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mrchris2000/mcp-devops-test/internal/testhub"
)

// Projects renders a project listing as a table.
func Projects(projects []testhub.Project) string {
	if len(projects) == 0 {
		return "No projects found."
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Description"})
	for _, p := range projects {
		t.AppendRow(table.Row{p.ID, p.Name, p.Description})
	}
	return fmt.Sprintf("%d project(s):\n%s", len(projects), t.Render())
}

// Tests renders an executable-asset listing as a table.
func Tests(projectName string, tests []testhub.TestAsset) string {
	if len(tests) == 0 {
		return fmt.Sprintf("No executable tests found in project %s.", projectName)
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Type", "Path"})
	for _, asset := range tests {
		t.AppendRow(table.Row{asset.ID, asset.Name, asset.ExternalType, asset.Path})
	}
	return fmt.Sprintf("%d test(s) in project %s:\n%s", len(tests), projectName, t.Render())
}

// Execution renders the state of a launched or polled execution.
func Execution(execution *testhub.Execution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Execution %s: %s", execution.ID, execution.Status)
	if execution.ResultID != "" {
		fmt.Fprintf(&b, "\nResult id: %s", execution.ResultID)
	}
	return b.String()
}

// Results renders a result listing as a table.
func Results(results []testhub.Result) string {
	if len(results) == 0 {
		return "No results found."
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name", "Status", "Verdict", "Duration"})
	for _, r := range results {
		t.AppendRow(table.Row{r.ID, r.Name, r.Status, r.Verdict, formatDuration(r.Duration)})
	}
	return fmt.Sprintf("%d result(s):\n%s", len(results), t.Render())
}

// ResultDetail renders one result with whichever enrichments were available.
func ResultDetail(detail *testhub.ResultDetail) string {
	var b strings.Builder
	r := detail.Result

	fmt.Fprintf(&b, "Result %s: %s\n", r.ID, r.Name)
	fmt.Fprintf(&b, "Status:  %s\n", r.Status)
	if r.Verdict != "" {
		fmt.Fprintf(&b, "Verdict: %s\n", r.Verdict)
	}
	if r.StartDate > 0 {
		fmt.Fprintf(&b, "Started: %s\n", time.UnixMilli(r.StartDate).UTC().Format(time.RFC3339))
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", formatDuration(r.Duration))
	}

	if detail.HasArtifacts && len(detail.Artifacts) > 0 {
		b.WriteString("\nArtifacts:\n")
		for _, a := range detail.Artifacts {
			fmt.Fprintf(&b, "  - %s (%d bytes)\n", a.Name, a.Size)
		}
	}

	if detail.HasPerformance {
		p := detail.Performance
		fmt.Fprintf(&b, "\nPerformance: %d requests, %d failed, avg %.1f ms\n",
			p.TotalRequests, p.FailedRequests, p.AverageMillis)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Log renders a plain-text execution log with a header line.
func Log(resultID, log string) string {
	log = strings.TrimRight(log, "\n")
	if log == "" {
		return fmt.Sprintf("No log available for result %s.", resultID)
	}
	return fmt.Sprintf("Log for result %s:\n%s", resultID, log)
}

// DownloadedReport renders the outcome of a report archive download.
func DownloadedReport(archivePath string, extracted []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report archive saved to %s\n", archivePath)
	fmt.Fprintf(&b, "Extracted %d file(s):\n", len(extracted))
	for _, path := range extracted {
		fmt.Fprintf(&b, "  - %s\n", path)
	}
	return strings.TrimRight(b.String(), "\n")
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

// formatDuration renders a millisecond duration compactly ("4.2s", "2m10s").
func formatDuration(millis int64) string {
	if millis <= 0 {
		return ""
	}
	return time.Duration(millis * int64(time.Millisecond)).Round(100 * time.Millisecond).String()
}
