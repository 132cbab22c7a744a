package config_test

import (
	"testing"
	"time"

	"portal-service/internal/config"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_PASSWORD", "admin-pass")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/portal?sslmode=disable")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, time.Hour, cfg.JWTTTL)
	require.True(t, cfg.DBAutoMigrate)
	require.Equal(t, 20, cfg.RateLimitMax)
	require.False(t, cfg.S3.Enabled())
	require.Equal(t, "postgres://u:p@db:5432/portal?sslmode=disable", cfg.DSN())
}

func TestLoad_MissingJWTSecretFails(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_MissingAdminPasswordFails(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_DSNFromParts(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_HOST", "postgres")
	t.Setenv("DB_NAME", "portal")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://user:pw@postgres:5432/portal?sslmode=disable", cfg.DSN())
}

func TestLoad_NoDatabaseFails(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setRequired(t)
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := config.Load()
	require.Error(t, err)
}
