package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mrchris2000/mcp-devops-test/internal/report"
	"github.com/mrchris2000/mcp-devops-test/internal/testhub"
	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

// toolArgs extracts the argument map from a tool call request.
func toolArgs(req mcp.CallToolRequest) (map[string]interface{}, bool) {
	args, ok := req.Params.Arguments.(map[string]interface{})
	return args, ok
}

// stringArg returns a string argument, "" when absent or not a string.
func stringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return v
}

// requireArgs extracts the named required string arguments, returning an
// error result when any is missing.
func requireArgs(req mcp.CallToolRequest, names ...string) (map[string]interface{}, *mcp.CallToolResult) {
	args, ok := toolArgs(req)
	if !ok {
		return nil, mcp.NewToolResultError("Invalid arguments format")
	}
	for _, name := range names {
		if stringArg(args, name) == "" {
			return nil, mcp.NewToolResultError(fmt.Sprintf("%s is required", name))
		}
	}
	return args, nil
}

// resolveProject resolves the "project" argument to a hub project.
func (s *MCPServer) resolveProject(ctx context.Context, args map[string]interface{}) (*testhub.Project, *mcp.CallToolResult) {
	project, err := s.hub.FindProject(ctx, stringArg(args, "project"))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return project, nil
}

func (s *MCPServer) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.hub.ListProjects(ctx)
	if err != nil {
		logging.Warn("Server", "list_projects failed: %v", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Projects(projects)), nil
}

func (s *MCPServer) handleListTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := requireArgs(req, "project")
	if errResult != nil {
		return errResult, nil
	}

	project, errResult := s.resolveProject(ctx, args)
	if errResult != nil {
		return errResult, nil
	}

	tests, err := s.hub.ListTests(ctx, project.ID, stringArg(args, "revision"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Tests(project.Name, tests)), nil
}

func (s *MCPServer) handleRunTest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := requireArgs(req, "project", "test_id")
	if errResult != nil {
		return errResult, nil
	}

	project, errResult := s.resolveProject(ctx, args)
	if errResult != nil {
		return errResult, nil
	}

	execution, err := s.hub.RunTest(ctx, project.ID, stringArg(args, "test_id"), stringArg(args, "revision"))
	if err != nil {
		logging.Warn("Server", "run_test failed: %v", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Execution(execution)), nil
}

func (s *MCPServer) handleGetExecutionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := requireArgs(req, "project", "execution_id")
	if errResult != nil {
		return errResult, nil
	}

	project, errResult := s.resolveProject(ctx, args)
	if errResult != nil {
		return errResult, nil
	}

	execution, err := s.hub.GetExecution(ctx, project.ID, stringArg(args, "execution_id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Execution(execution)), nil
}

func (s *MCPServer) handleListResults(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := requireArgs(req, "project")
	if errResult != nil {
		return errResult, nil
	}

	project, errResult := s.resolveProject(ctx, args)
	if errResult != nil {
		return errResult, nil
	}

	results, err := s.hub.ListResults(ctx, project.ID, stringArg(args, "execution_id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Results(results)), nil
}

func (s *MCPServer) handleGetResult(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := requireArgs(req, "project", "result_id")
	if errResult != nil {
		return errResult, nil
	}

	project, errResult := s.resolveProject(ctx, args)
	if errResult != nil {
		return errResult, nil
	}

	detail, err := s.hub.GetResult(ctx, project.ID, stringArg(args, "result_id"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.ResultDetail(detail)), nil
}

func (s *MCPServer) handleGetTestLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := requireArgs(req, "project", "result_id")
	if errResult != nil {
		return errResult, nil
	}

	project, errResult := s.resolveProject(ctx, args)
	if errResult != nil {
		return errResult, nil
	}

	resultID := stringArg(args, "result_id")
	log, err := s.hub.GetTestLog(ctx, project.ID, resultID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Log(resultID, log)), nil
}

func (s *MCPServer) handleDownloadReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := requireArgs(req, "project", "result_id")
	if errResult != nil {
		return errResult, nil
	}

	project, errResult := s.resolveProject(ctx, args)
	if errResult != nil {
		return errResult, nil
	}

	archivePath, extracted, err := s.hub.DownloadReport(ctx, project.ID, stringArg(args, "result_id"), s.downloadDir)
	if err != nil {
		logging.Warn("Server", "download_report failed: %v", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.DownloadedReport(archivePath, extracted)), nil
}
