package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "kreasi-backend", cfg.Service.Name)
	require.Equal(t, "8080", cfg.Service.Port)
	require.Equal(t, "info", cfg.Logging.Level)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.Equal(t, time.Hour, cfg.Auth.AccessTTL)
	require.Equal(t, 15*time.Minute, cfg.Auth.ResetTTL)
	require.Equal(t, "http://localhost:5173/reset-password", cfg.Auth.ResetURLBase)
	require.Equal(t, "mistralai/Mistral-7B-Instruct-v0.2", cfg.Provider.TextModel)
	require.Equal(t, "black-forest-labs/FLUX.1-dev", cfg.Provider.ImageModel)
	require.False(t, cfg.S3.Enabled)
	require.Equal(t, 587, cfg.Mail.Port)
	require.Equal(t, 15*time.Second, cfg.Shutdown.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")
	t.Setenv("SHUTDOWN_TIMEOUT", "5s")

	cfg := Load()

	require.Equal(t, "9090", cfg.Service.Port)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	require.True(t, cfg.Tracing.Enabled)
	require.Equal(t, 0.25, cfg.Tracing.SampleRate)
	require.Equal(t, 5*time.Second, cfg.GetShutdownTimeoutDuration())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "not-a-bool")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

	cfg := Load()

	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, 587, cfg.Mail.Port)
	require.Equal(t, time.Hour, cfg.Auth.AccessTTL)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/kreasi")
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingDSN(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()
	cfg.Database.DSN = ""
	require.ErrorContains(t, cfg.Validate(), "DATABASE_DSN")
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/kreasi")

	cfg := Load()
	cfg.Auth.JWTSecret = ""
	require.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
}

func TestValidate_SampleRateOutOfRange(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/kreasi")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TRACING_SAMPLE_RATE", "1.5")

	cfg := Load()
	require.ErrorContains(t, cfg.Validate(), "TRACING_SAMPLE_RATE")
}

func TestValidate_S3NeedsBucket(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://localhost/kreasi")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("S3_ENABLED", "true")

	cfg := Load()
	require.ErrorContains(t, cfg.Validate(), "S3_BUCKET")
}
