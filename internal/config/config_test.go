package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "samaj_directory", cfg.DB.Name)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.Equal(t, 30, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Pagination.DebounceDelay())
	assert.Equal(t, "@every 5m", cfg.Scheduler.CountsRefresh)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.App.SwaggerEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=sqlite\nDB_SQLITE_PATH=/tmp/dir.db\nPAGE_SIZE_DEFAULT=15\nGRPC_PORT=6000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))
	t.Setenv("GRPC_PORT", "7000")
	t.Setenv("SEARCH_DEBOUNCE_MS", "250")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/dir.db", cfg.DB.SQLitePath)
	assert.Equal(t, 15, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, "7000", cfg.App.GRPCPort)
	assert.Equal(t, 250*time.Millisecond, cfg.Pagination.DebounceDelay())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_ProductionDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
	assert.False(t, cfg.App.SwaggerEnabled)
}

func TestConfig_Validate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.DB.Driver = "mysql" }, wantMsg: "DB_DRIVER"},
		{name: "same ports", mutate: func(c *Config) { c.App.HTTPPort = c.App.GRPCPort }, wantMsg: "must differ"},
		{name: "default over max", mutate: func(c *Config) { c.Pagination.DefaultPageSize = 500 }, wantMsg: "PAGE_SIZE_DEFAULT"},
		{name: "rate limit without redis", mutate: func(c *Config) { c.Redis.Enabled = false }, wantMsg: "REDIS_ENABLED"},
		{name: "bad breaker ratio", mutate: func(c *Config) { c.Client.BreakerFailureRatio = 2 }, wantMsg: "FAILURE_RATIO"},
		{name: "idle over open", mutate: func(c *Config) { c.DB.MaxIdleConns = 100 }, wantMsg: "DB_MAX_IDLE_CONNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", c.DSN())
}
