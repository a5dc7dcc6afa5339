package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SURREALDB_URL", "")
	t.Setenv("RABBITMQ_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.LocalDBDriver)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, "https://www.google.com", cfg.ProbeURL)
	assert.Empty(t, cfg.SurrealURL)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("SYNC_INTERVAL", "30s")
	t.Setenv("SURREALDB_URL", "ws://db:8000")
	t.Setenv("LOCAL_DB_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
	assert.Equal(t, "ws://db:8000", cfg.SurrealURL)
	assert.Equal(t, "postgres", cfg.LocalDBDriver)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("LOCAL_DB_DRIVER", "mysql")
	t.Setenv("SYNC_INTERVAL", "-1s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCAL_DB_DRIVER")
	assert.Contains(t, err.Error(), "SYNC_INTERVAL")
}
