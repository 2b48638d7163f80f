package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "exportops-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.Lock.LeaseTTL)
	assert.Equal(t, float64(10), cfg.Ledger.LowStockThreshold)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
}

func TestValidate(t *testing.T) {
	t.Run("defaults pass validation", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		assert.NoError(t, cfg.validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Database.MaxIdleConns = 50
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		assert.Error(t, cfg.validate())

		cfg.Database.SSLMode = "require"
		assert.NoError(t, cfg.validate())
	})

	t.Run("production rejects wildcard CORS origin", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio bounds", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Telemetry.SamplingRatio = 1.5
		assert.Error(t, cfg.validate())
	})
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "exportops",
		Password: "p@ss/word",
		DBName:   "ledger",
		SSLMode:  "require",
	}
	dsn := d.DSN()
	require.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
