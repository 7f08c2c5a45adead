package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/grovevc/grove/pkg/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grove.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, "")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultUserName, cfg.User.Name)
	require.Equal(t, config.DefaultRevset, cfg.UI.DefaultRevset)
	require.Equal(t, ".grove", cfg.Repository.Path)
	require.Equal(t, "none", cfg.Logging.Level)
}

func TestLoad_File(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, `
user:
  name: Test User
  email: test.user@example.com
ui:
  default_revset: "@"
logging:
  level: DEBUG
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test User", cfg.User.Name)
	require.Equal(t, "test.user@example.com", cfg.User.Email)
	require.Equal(t, "@", cfg.UI.DefaultRevset)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, "user:\n  name: From File\n")
	t.Setenv("GROVE_USER_NAME", "From Env")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.User.Name)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	viper.Reset()
	_, err := config.Load(filepath.Join(t.TempDir(), "no-such-file.yaml"))
	require.Error(t, err)
}
