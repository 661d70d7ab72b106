// Package config loads the server configuration from an optional YAML file
// merged with environment overrides. Credentials normally arrive through the
// environment (the MCP host passes them in the server definition); the file
// exists for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrchris2000/mcp-devops-test/pkg/logging"
)

const (
	userConfigDir  = ".config/devops-test-mcp"
	configFileName = "config.yaml"
)

// Defaults applied when neither file nor environment provides a value.
const (
	DefaultRealm    = "testserver"
	DefaultClientID = "devops-test-mcp"
	DefaultLogLevel = "info"
)

// Config is the top-level configuration for the DevOps Test MCP server.
type Config struct {
	// ServerURL is the test hub base location (scheme + host). Required.
	ServerURL string `yaml:"serverURL"`

	// Realm is the identity broker realm for the offline-token scheme.
	Realm string `yaml:"realm,omitempty"`

	// ClientID identifies this client to the identity broker.
	ClientID string `yaml:"clientID,omitempty"`

	// ClientSecret is the optional confidential-client secret.
	ClientSecret string `yaml:"clientSecret,omitempty"`

	// OfflineToken selects the brokered authentication scheme when set.
	OfflineToken string `yaml:"offlineToken,omitempty"`

	// PersonalAccessToken selects the direct scheme when set (and no
	// offline token is configured).
	PersonalAccessToken string `yaml:"personalAccessToken,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel,omitempty"`
}

// envOverrides maps environment variable names onto config fields.
var envOverrides = []struct {
	name  string
	apply func(*Config, string)
}{
	{"DEVOPS_TEST_SERVER_URL", func(c *Config, v string) { c.ServerURL = v }},
	{"DEVOPS_TEST_REALM", func(c *Config, v string) { c.Realm = v }},
	{"DEVOPS_TEST_CLIENT_ID", func(c *Config, v string) { c.ClientID = v }},
	{"DEVOPS_TEST_CLIENT_SECRET", func(c *Config, v string) { c.ClientSecret = v }},
	{"DEVOPS_TEST_OFFLINE_TOKEN", func(c *Config, v string) { c.OfflineToken = v }},
	{"DEVOPS_TEST_PERSONAL_ACCESS_TOKEN", func(c *Config, v string) { c.PersonalAccessToken = v }},
	{"DEVOPS_TEST_LOG_LEVEL", func(c *Config, v string) { c.LogLevel = v }},
}

// DefaultConfigPath returns the per-user configuration directory.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Load reads config.yaml from the given directory (missing file is fine),
// applies environment overrides, fills defaults, and validates.
func Load(configPath string) (Config, error) {
	config := Config{
		Realm:    DefaultRealm,
		ClientID: DefaultClientID,
		LogLevel: DefaultLogLevel,
	}

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("Config", "No config.yaml found at %s, using environment only", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("Config", "Loaded configuration from %s", configFilePath)
	}

	for _, override := range envOverrides {
		if v := os.Getenv(override.name); v != "" {
			override.apply(&config, v)
		}
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Realm == "" {
		config.Realm = DefaultRealm
	}
	if config.ClientID == "" {
		config.ClientID = DefaultClientID
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}
}

// Validate checks that the configuration can build an authentication
// provider: a server URL plus at least one credential.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("serverURL is required (set DEVOPS_TEST_SERVER_URL)")
	}
	if c.OfflineToken == "" && c.PersonalAccessToken == "" {
		return fmt.Errorf("either an offline token or a personal access token is required " +
			"(set DEVOPS_TEST_OFFLINE_TOKEN or DEVOPS_TEST_PERSONAL_ACCESS_TOKEN)")
	}
	return nil
}
