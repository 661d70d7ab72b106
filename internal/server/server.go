// Package server exposes the test hub operations as MCP tools over stdio.
// Each tool maps one-to-one onto a REST endpoint of the hub; the handlers
// validate arguments, call the testhub client, and render the response as
// human-readable report text.
package server

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mrchris2000/mcp-devops-test/internal/testhub"
	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

// MCPServer bridges AI assistants to the test hub via the MCP protocol.
type MCPServer struct {
	hub         *testhub.Client
	mcpServer   *server.MCPServer
	downloadDir string
}

// NewMCPServer creates the MCP server and registers all tools. Downloaded
// report archives are extracted under downloadDir (a per-process temp
// directory when empty).
func NewMCPServer(hub *testhub.Client, version, downloadDir string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"devops-test-mcp",
		version,
		server.WithToolCapabilities(false),
	)

	if downloadDir == "" {
		downloadDir = filepath.Join(os.TempDir(), "devops-test-mcp")
	}

	s := &MCPServer{
		hub:         hub,
		mcpServer:   mcpServer,
		downloadDir: downloadDir,
	}
	s.registerTools()
	return s
}

// Start serves MCP over stdio. It blocks until the client closes the
// connection or the context is cancelled.
func (s *MCPServer) Start(ctx context.Context) error {
	logging.Info("Server", "Starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}
