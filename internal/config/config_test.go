package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 3, cfg.TableNumberRetries)
	assert.Equal(t, "UTC", cfg.StatsTimezone)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server_port: \"9090\"\nredis_url: redis://cache:6379\norder_number_retries: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ORDER_NUMBER_RETRIES", "7")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "redis://cache:6379", cfg.RedisURL)
	assert.Equal(t, 7, cfg.OrderNumberRetries)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("IDEMPOTENCY_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 86400, cfg.IdempotencyTTL)
}
