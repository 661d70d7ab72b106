package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrchris2000/mcp-devops-test/internal/auth"
)

// Exit codes for CLI commands. These follow common conventions so scripts
// and MCP hosts can distinguish configuration problems from auth failures.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates missing or invalid configuration/credentials.
	ExitCodeConfig = 2
)

// rootCmd represents the base command for the devops-test-mcp application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "devops-test-mcp",
	Short: "MCP server for a DevOps test-execution hub",
	Long: `devops-test-mcp exposes a DevOps test hub to AI assistants over the
Model Context Protocol: listing projects and tests, launching executions,
and retrieving results, logs, and report archives.

Authentication uses either a long-lived offline token exchanged with the
hub's identity broker, or a personal access token exchanged directly.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "devops-test-mcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var cfgErr *auth.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfig
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
}
