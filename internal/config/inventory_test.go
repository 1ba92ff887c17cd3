package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yml")
	body := []byte("inventory:\n  defaultPageSize: 20\n  maxPageSize: 50\n  reconcileInterval: 30s\n  productCacheTTL: 1m\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	holder, err := NewInventoryConfigHolder(path)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.Equal(t, 30*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, time.Minute, cfg.ReconcileLockTTL)
}

func TestInventoryConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yml")
	body := []byte("inventory:\n  defaultPageSize: 20\n  maxPageSize: 50\n  reconcileLockTTL: 2m\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	holder, err := NewInventoryConfigHolder(path)
	require.NoError(t, err)

	defaults := DefaultInventoryConfig()
	cfg := holder.Get()
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 2*time.Minute, cfg.ReconcileLockTTL)
	assert.Equal(t, defaults.ProductCacheTTL, cfg.ProductCacheTTL)
	assert.Equal(t, defaults.ReconcileInterval, cfg.ReconcileInterval)
}

func TestInventoryConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yml")
	body := []byte("inventory:\n  defaultPageSize: 50\n  maxPageSize: 10\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	_, err := NewInventoryConfigHolder(path)
	assert.Error(t, err)
}

func TestStaticInventoryConfigHolder(t *testing.T) {
	holder := NewStaticInventoryConfigHolder(DefaultInventoryConfig())
	assert.Equal(t, DefaultInventoryConfig(), holder.Get())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "SQLite")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AUTO_MIGRATE", "off")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.AutoMigrate)
}
