package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrchris2000/mcp-devops-test/internal/auth"
	"github.com/mrchris2000/mcp-devops-test/internal/config"
	"github.com/mrchris2000/mcp-devops-test/internal/gateway"
	"github.com/mrchris2000/mcp-devops-test/internal/server"
	"github.com/mrchris2000/mcp-devops-test/internal/testhub"
	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

// serveConfigPath specifies a custom configuration directory. When empty the
// per-user config directory is used; credentials from the environment always
// override the file.
var serveConfigPath string

// serveDebug forces debug-level logging regardless of the configured level.
var serveDebug bool

// serveDownloadDir overrides where report archives are downloaded and extracted.
var serveDownloadDir string

// newServeCmd creates the serve command, which runs the MCP server over
// stdio until the client closes the connection.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Starts the MCP server using stdio transport for AI assistant
integration. Protocol frames use stdout; all diagnostics go to stderr.

Configuration is read from config.yaml in the config directory, with
environment variables taking precedence:

  DEVOPS_TEST_SERVER_URL             test hub base URL (required)
  DEVOPS_TEST_OFFLINE_TOKEN          offline token (brokered scheme)
  DEVOPS_TEST_PERSONAL_ACCESS_TOKEN  personal access token (direct scheme)
  DEVOPS_TEST_REALM                  identity broker realm (default: testserver)
  DEVOPS_TEST_CLIENT_ID              broker client id (default: devops-test-mcp)
  DEVOPS_TEST_CLIENT_SECRET          broker client secret (optional)
  DEVOPS_TEST_LOG_LEVEL              debug, info, warn, or error`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Directory containing config.yaml")
	cmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&serveDownloadDir, "download-dir", "", "Directory for downloaded report archives")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath := serveConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	// Logging must be initialized before config loading so load-time
	// messages are emitted, and must never write to stdout.
	logging.Init(logging.LevelInfo, os.Stderr)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	gw, err := gateway.New(cfg.ServerURL, provider, GetVersion())
	if err != nil {
		return err
	}

	hub := testhub.NewClient(gw)
	mcpServer := server.NewMCPServer(hub, GetVersion(), serveDownloadDir)

	logging.Info("Bootstrap", "devops-test-mcp %s serving %s", GetVersion(), cfg.ServerURL)
	return mcpServer.Start(cmd.Context())
}

// buildProvider selects the authentication scheme from the configured
// credentials. The offline token wins when both are present: the brokered
// exchange yields rotating short-lived tokens, which is the stronger scheme.
func buildProvider(cfg config.Config) (auth.Provider, error) {
	if cfg.OfflineToken != "" {
		logging.Info("Bootstrap", "Using brokered authentication (realm=%s client=%s)", cfg.Realm, cfg.ClientID)
		return auth.NewBrokeredProvider(auth.BrokeredConfig{
			ServerURL:    cfg.ServerURL,
			Realm:        cfg.Realm,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			OfflineToken: cfg.OfflineToken,
		})
	}
	if cfg.PersonalAccessToken != "" {
		logging.Info("Bootstrap", "Using personal access token authentication")
		return auth.NewDirectProvider(auth.DirectConfig{
			ServerURL:           cfg.ServerURL,
			PersonalAccessToken: cfg.PersonalAccessToken,
		})
	}
	return nil, fmt.Errorf("no credentials configured")
}
