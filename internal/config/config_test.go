package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careers/listing-service/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/listing")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LISTING_PORT", "")
	t.Setenv("LISTING_GRPC_PORT", "")
	t.Setenv("LISTING_CONFIG", "")
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_RequiresRedisURL(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "9093", cfg.GRPCPort)
	assert.Equal(t, 12, cfg.DefaultPageSize)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "@every 1h", cfg.SweepSpec)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "listing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_page_size: 24\ncache_ttl: 1m\nsweep_spec: \"0 3 * * *\"\n"), 0o600))
	t.Setenv("LISTING_CONFIG", path)
	t.Setenv("LISTING_PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.DefaultPageSize)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "0 3 * * *", cfg.SweepSpec)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://localhost/listing", cfg.DatabaseURL)
}

func TestLoad_RejectsInvalidOverlay(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "listing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_page_size: 500\n"), 0o600))
	t.Setenv("LISTING_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_page_size")
}

func TestLoad_MissingOverlayFile(t *testing.T) {
	setRequired(t)
	t.Setenv("LISTING_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadClient_DoesNotNeedConnections(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LISTING_CONFIG", "")
	t.Setenv("LISTING_PORT", "8090")
	t.Setenv("LISTING_URL", "")

	cfg, err := config.LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090", cfg.ServerURL)
}
