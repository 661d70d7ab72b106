package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o600))
	return dir
}

func TestLoad_FromFile(t *testing.T) {
	dir := writeConfigFile(t, `
serverURL: https://hub.example.com
offlineToken: tok-123
realm: myrealm
`)

	config, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example.com", config.ServerURL)
	assert.Equal(t, "tok-123", config.OfflineToken)
	assert.Equal(t, "myrealm", config.Realm)
	assert.Equal(t, DefaultClientID, config.ClientID)
	assert.Equal(t, DefaultLogLevel, config.LogLevel)
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("DEVOPS_TEST_SERVER_URL", "https://hub.example.com")
	t.Setenv("DEVOPS_TEST_PERSONAL_ACCESS_TOKEN", "pat-123")

	config, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "https://hub.example.com", config.ServerURL)
	assert.Equal(t, "pat-123", config.PersonalAccessToken)
	assert.Equal(t, DefaultRealm, config.Realm)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := writeConfigFile(t, `
serverURL: https://file.example.com
offlineToken: file-token
`)
	t.Setenv("DEVOPS_TEST_SERVER_URL", "https://env.example.com")

	config, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", config.ServerURL)
	assert.Equal(t, "file-token", config.OfflineToken)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serverURL is required")

	t.Setenv("DEVOPS_TEST_SERVER_URL", "https://hub.example.com")
	_, err = Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline token or a personal access token")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := writeConfigFile(t, "serverURL: [broken")
	_, err := Load(dir)
	require.Error(t, err)
}
