package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_STORE", "")
	t.Setenv("JWT_ACCESS_TTL", "")

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, int64(5<<20), cfg.PhotoMaxBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("APP_STORE", "memory")
	t.Setenv("APP_MIGRATE", "true")
	t.Setenv("RATE_RPS", "7")
	t.Setenv("JWT_REFRESH_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "memory", cfg.Store)
	assert.True(t, cfg.Migrate)
	assert.Equal(t, 7, cfg.RateRPS)
	assert.Equal(t, time.Hour, cfg.RefreshTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RATE_RPS", "lots")
	t.Setenv("APP_MIGRATE", "maybe")

	cfg := Load()
	assert.Equal(t, 100, cfg.RateRPS)
	assert.False(t, cfg.Migrate)
}
