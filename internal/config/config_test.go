package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaltracker-backend/internal/config"
)

const sampleYAML = `
server:
  host: "127.0.0.1"
  port: 8080
database:
  host: "db"
  user: "rental"
  database: "rental_tracker"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := config.Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)

		assert.Equal(t, 8081, cfg.Server.HealthPort)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 480, cfg.JWT.SessionExpiryMinutes)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "0 5 0 * * *", cfg.Scheduler.MarkOverdueRentals)
		assert.Equal(t, "0 0 8 * * *", cfg.Scheduler.SendOverdueReminders)
		assert.Equal(t, "postgres://rental:@db:5432/rental_tracker?sslmode=disable", cfg.GetDatabaseConnectionString())
		assert.Equal(t, "127.0.0.1:8080", cfg.GetServerAddress())
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		t.Setenv("DB_HOST", "prod-db")
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("LOG_FORMAT", "json")

		cfg, err := config.Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)

		assert.Equal(t, "prod-db", cfg.Database.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, 9001, cfg.Server.HealthPort)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "rental", cfg.Database.User)
	})

	t.Run("Short JWT secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "short")
		_, err := config.Load(writeConfig(t, sampleYAML))
		assert.ErrorContains(t, err, "at least 32 characters")
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("SendGrid needs a sender", func(t *testing.T) {
		t.Setenv("SENDGRID_API_KEY", "SG.key")
		_, err := config.Load(writeConfig(t, sampleYAML))
		assert.ErrorContains(t, err, "from address")
	})
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, config.SecurityPublic, config.GetSecurityLevel("POST", "/api/v1/auth/login"))
	assert.Equal(t, config.SecurityAuthenticated, config.GetSecurityLevel("GET", "/api/v1/equipment/{id}"))
	assert.Equal(t, config.SecurityUser, config.GetSecurityLevel("POST", "/api/v1/rentals"))
	assert.Equal(t, config.SecurityAdmin, config.GetSecurityLevel("POST", "/api/v1/admin/rentals/{id}/return"))
	assert.Equal(t, config.SecurityAdmin, config.GetSecurityLevel("GET", "/unknown"))
}
