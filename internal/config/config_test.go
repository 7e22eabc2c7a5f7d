package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 60, cfg.RateLimit.Requests)
	require.Equal(t, time.Minute, cfg.RateLimit.Window)
	require.True(t, cfg.Scheduler.Enabled)
	require.Equal(t, time.Hour, cfg.Scheduler.SweepInterval)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PLANTDESK_SERVER_ADDR", ":9090")
	t.Setenv("PLANTDESK_DATABASE_DRIVER", "postgres")
	t.Setenv("PLANTDESK_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("PLANTDESK_SCHEDULER_SWEEP_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, 15*time.Minute, cfg.Scheduler.SweepInterval)
}
