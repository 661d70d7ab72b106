package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrchris2000/mcp-devops-test/internal/testhub"
)

func TestProjects(t *testing.T) {
	out := Projects([]testhub.Project{
		{ID: "p-1", Name: "Payments", Description: "payment flows"},
		{ID: "p-2", Name: "Checkout"},
	})
	assert.Contains(t, out, "2 project(s)")
	assert.Contains(t, out, "Payments")
	assert.Contains(t, out, "payment flows")

	assert.Equal(t, "No projects found.", Projects(nil))
}

func TestTests(t *testing.T) {
	out := Tests("Payments", []testhub.TestAsset{
		{ID: "a-1", Name: "Login flow", ExternalType: "APISUITE", Path: "suites/login"},
	})
	assert.Contains(t, out, "1 test(s) in project Payments")
	assert.Contains(t, out, "Login flow")

	assert.Contains(t, Tests("Payments", nil), "No executable tests")
}

func TestExecution(t *testing.T) {
	out := Execution(&testhub.Execution{ID: "exec-1", Status: "RUNNING"})
	assert.Equal(t, "Execution exec-1: RUNNING", out)

	out = Execution(&testhub.Execution{ID: "exec-1", Status: "COMPLETE", ResultID: "res-1"})
	assert.Contains(t, out, "Result id: res-1")
}

func TestResultDetail(t *testing.T) {
	detail := &testhub.ResultDetail{
		Result: testhub.Result{
			ID: "res-1", Name: "Login flow", Status: "COMPLETE",
			Verdict: "FAIL", Duration: 4200,
		},
		HasArtifacts: true,
		Artifacts:    []testhub.Artifact{{Name: "screenshot.png", Size: 1024}},
	}

	out := ResultDetail(detail)
	assert.Contains(t, out, "Verdict: FAIL")
	assert.Contains(t, out, "Duration: 4.2s")
	assert.Contains(t, out, "screenshot.png (1024 bytes)")
	assert.NotContains(t, out, "Performance")
}

func TestLog(t *testing.T) {
	assert.Contains(t, Log("res-1", "step 1: ok\n"), "step 1: ok")
	assert.Equal(t, "No log available for result res-1.", Log("res-1", ""))
}

func TestDownloadedReport(t *testing.T) {
	out := DownloadedReport("/tmp/report.zip", []string{"report.html", "logs/run.log"})
	assert.Contains(t, out, "/tmp/report.zip")
	assert.Contains(t, out, "Extracted 2 file(s)")
	assert.Contains(t, out, "logs/run.log")
}
