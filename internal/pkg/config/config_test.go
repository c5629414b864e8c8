package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathieuadams/ukcrimerepository/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("crimemap-test")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "https://data.police.uk/api", cfg.Upstream.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Upstream.DatesTimeout)
	assert.Equal(t, 15*time.Second, cfg.Upstream.CrimesTimeout)
	assert.Equal(t, time.Hour, cfg.DatesCache.TTL)
	assert.Equal(t, "2025-08", cfg.DatesCache.Fallback)
	assert.Equal(t, 2*time.Second, cfg.NATS.PublishTimeout)
	assert.Equal(t, "crimemap-test", cfg.Telemetry.ServiceName)
	assert.False(t, cfg.Server.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CRIMEMAP_SERVER_PORT", "8081")
	t.Setenv("CRIMEMAP_SERVER_ENVIRONMENT", "Production")
	t.Setenv("CRIMEMAP_DATES_CACHE_TTL", "30m")
	t.Setenv("CRIMEMAP_UPSTREAM_BASE_URL", "http://mirror.local/api")

	cfg, err := config.Load("crimemap-test")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.DatesCache.TTL)
	assert.Equal(t, "http://mirror.local/api", cfg.Upstream.BaseURL)
}

func TestLoad_InvalidEnvFails(t *testing.T) {
	t.Setenv("CRIMEMAP_DATES_CACHE_FALLBACK", "August")

	_, err := config.Load("crimemap-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dates_cache.fallback")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{
		Server:     config.ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Upstream:   config.UpstreamConfig{BaseURL: "not a url"},
		DatesCache: config.DatesCacheConfig{TTL: 0, Fallback: "2025-13"},
		Valkey:     config.ValkeyConfig{Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.port", "upstream.base_url", "upstream timeouts", "dates_cache.ttl", "dates_cache.fallback", "valkey.addr"} {
		assert.Contains(t, err.Error(), want)
	}
}
