package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers every MCP tool. Tool descriptions mention retry
// guidance where appropriate; that guidance is advisory for the calling
// agent, never enforced here.
func (s *MCPServer) registerTools() {
	listProjectsTool := mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects on the test hub that are visible to the configured credentials"),
	)
	s.mcpServer.AddTool(listProjectsTool, s.handleListProjects)

	listTestsTool := mcp.NewTool("list_tests",
		mcp.WithDescription("List the executable tests of a project"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or id"),
		),
		mcp.WithString("revision",
			mcp.Description("Asset branch to list (default: master)"),
		),
	)
	s.mcpServer.AddTool(listTestsTool, s.handleListTests)

	runTestTool := mcp.NewTool("run_test",
		mcp.WithDescription("Launch a test and return the created execution. Use get_execution_status to poll for completion."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or id"),
		),
		mcp.WithString("test_id",
			mcp.Required(),
			mcp.Description("Id of the test asset to launch (from list_tests)"),
		),
		mcp.WithString("revision",
			mcp.Description("Asset branch to launch from (default: master)"),
		),
	)
	s.mcpServer.AddTool(runTestTool, s.handleRunTest)

	executionStatusTool := mcp.NewTool("get_execution_status",
		mcp.WithDescription("Get the current status of a test execution. If the execution is still running, wait a few seconds before calling again."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or id"),
		),
		mcp.WithString("execution_id",
			mcp.Required(),
			mcp.Description("Id of the execution (from run_test)"),
		),
	)
	s.mcpServer.AddTool(executionStatusTool, s.handleGetExecutionStatus)

	listResultsTool := mcp.NewTool("list_results",
		mcp.WithDescription("List test results of a project, optionally filtered to one execution"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or id"),
		),
		mcp.WithString("execution_id",
			mcp.Description("Only list results of this execution"),
		),
	)
	s.mcpServer.AddTool(listResultsTool, s.handleListResults)

	getResultTool := mcp.NewTool("get_result",
		mcp.WithDescription("Get a test result with its verdict, artifacts, and performance summary"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or id"),
		),
		mcp.WithString("result_id",
			mcp.Required(),
			mcp.Description("Id of the result"),
		),
	)
	s.mcpServer.AddTool(getResultTool, s.handleGetResult)

	getTestLogTool := mcp.NewTool("get_test_log",
		mcp.WithDescription("Get the plain-text execution log of a test result"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or id"),
		),
		mcp.WithString("result_id",
			mcp.Required(),
			mcp.Description("Id of the result"),
		),
	)
	s.mcpServer.AddTool(getTestLogTool, s.handleGetTestLog)

	downloadReportTool := mcp.NewTool("download_report",
		mcp.WithDescription("Download and extract the report archive of a test result"),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name or id"),
		),
		mcp.WithString("result_id",
			mcp.Required(),
			mcp.Description("Id of the result"),
		),
	)
	s.mcpServer.AddTool(downloadReportTool, s.handleDownloadReport)
}
