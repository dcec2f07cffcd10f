package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "leadcrm", cfg.Database.DBName)
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  addr: ":9090"
  allowed_origins:
    - "https://crm.example.com"
database:
  host: db.internal
  port: 5433
mailer:
  method: smtp
  smtp:
    host: smtp.example.com
    port: 465
  from_email: crm@example.com
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, []string{"https://crm.example.com"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 5433, cfg.Database.Port)
	require.Equal(t, "smtp", cfg.Mailer.Method)
	require.Equal(t, "smtp.example.com", cfg.Mailer.SMTP.Host)
	require.Equal(t, 465, cfg.Mailer.SMTP.Port)
	require.Equal(t, "crm@example.com", cfg.Mailer.FromEmail)

	// untouched keys keep their defaults
	require.Equal(t, "./migrations", cfg.Server.MigrationsPath)
	require.Equal(t, "leadcrm", cfg.Database.DBName)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, "database:\n  host: from-file\n")
	t.Setenv("LEADCRM_DATABASE_HOST", "from-env")
	t.Setenv("LEADCRM_MAILER_METHOD", "smtp")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Database.Host)
	require.Equal(t, "smtp", cfg.Mailer.Method)
}
