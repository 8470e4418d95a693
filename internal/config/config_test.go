package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BACKOFFICE_AUTH_SECRET", "test-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.True(t, cfg.Database.Migrate)
	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("BACKOFFICE_AUTH_SECRET", "test-secret")

	path := filepath.Join(t.TempDir(), "backoffice.yaml")
	content := `
server:
  port: 9090
database:
  dsn: postgres://localhost/backoffice
rate_limit:
  enabled: false
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "postgres://localhost/backoffice", cfg.Database.DSN)
	require.False(t, cfg.RateLimit.Enabled)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMalformedFileFails(t *testing.T) {
	t.Setenv("BACKOFFICE_AUTH_SECRET", "test-secret")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BACKOFFICE_AUTH_SECRET", "from-env")
	t.Setenv("BACKOFFICE_SERVER_PORT", "7070")
	t.Setenv("BACKOFFICE_DATABASE_DSN", "postgres://db/override")
	t.Setenv("BACKOFFICE_AUTH_TOKEN_TTL", "2h")
	t.Setenv("BACKOFFICE_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "postgres://db/override", cfg.Database.DSN)
	require.Equal(t, "from-env", cfg.Auth.Secret)
	require.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRequiresSecret(t *testing.T) {
	t.Setenv("BACKOFFICE_AUTH_SECRET", "")
	_, err := Load("")
	require.Error(t, err)
}
