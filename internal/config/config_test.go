package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/dynamic-activities/internal/platform"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, platform.Info{OS: platform.OSiOS, Version: platform.Version{Major: 18, Minor: 2}}, cfg.Platform.Info())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
transport:
  mode: stdio
auth:
  enabled: true
  tokens:
    ios-app: secret
platform:
  version: "16.4"
  max_per_app: 2
  foreground: false
`), 0o644))
	t.Setenv("DYNACT_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, map[string]string{"secret": "ios-app"}, cfg.Auth.TokenTable())
	require.Equal(t, "16.4", cfg.Platform.Version)
	require.Equal(t, 2, cfg.Platform.MaxPerApp)
	require.False(t, cfg.Platform.Foreground)
	require.True(t, cfg.Platform.Entitled)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DYNACT_SERVER_HOST", "127.0.0.1")
	t.Setenv("DYNACT_SERVER_PORT", "7000")
	t.Setenv("DYNACT_TRANSPORT", "stdio")
	t.Setenv("DYNACT_DB_PATH", ":memory:")
	t.Setenv("DYNACT_LOG_LEVEL", "debug")
	t.Setenv("DYNACT_LOG_PATH", "/tmp/dynact.log")
	t.Setenv("DYNACT_AUTH_ENABLED", "true")
	t.Setenv("DYNACT_AUTH_TOKENS", "ios=abc, web=def")
	t.Setenv("DYNACT_PLATFORM_OS", "android")
	t.Setenv("DYNACT_PLATFORM_VERSION", "14")
	t.Setenv("DYNACT_PLATFORM_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 7000, cfg.Server.Port)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, ":memory:", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/dynact.log", cfg.Log.Path)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, map[string]string{"ios": "abc", "web": "def"}, cfg.Auth.Tokens)
	require.Equal(t, platform.OSAndroid, cfg.Platform.Info().OS)
	require.False(t, cfg.Platform.ActivitiesEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port not a number", map[string]string{"DYNACT_SERVER_PORT": "eighty"}},
		{"port out of range", map[string]string{"DYNACT_SERVER_PORT": "70000"}},
		{"unknown transport", map[string]string{"DYNACT_TRANSPORT": "grpc"}},
		{"unknown level", map[string]string{"DYNACT_LOG_LEVEL": "loud"}},
		{"bad bool", map[string]string{"DYNACT_AUTH_ENABLED": "sometimes"}},
		{"auth without tokens", map[string]string{"DYNACT_AUTH_ENABLED": "true"}},
		{"bad token pair", map[string]string{"DYNACT_AUTH_TOKENS": "ios"}},
		{"unknown os", map[string]string{"DYNACT_PLATFORM_OS": "symbian"}},
		{"bad version", map[string]string{"DYNACT_PLATFORM_VERSION": "eighteen"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("DYNACT_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}
