package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "LOG_LEVEL", "APP_ENV", "MONTH_SEARCH_WORKERS", "ALLOWED_ORIGINS", "QUALITY_SCAN_INTERVAL"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "coldstore.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Development)
	assert.Equal(t, 4, cfg.Workers)
	assert.Len(t, cfg.AllowedOrigins, 2)
	assert.Equal(t, time.Hour, cfg.QualityScanInterval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MONTH_SEARCH_WORKERS", "16")
	t.Setenv("ALLOWED_ORIGINS", "https://billing.example.com, https://ops.example.com")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.False(t, cfg.Development)
	assert.Equal(t, 16, cfg.Workers)
	assert.Equal(t, []string{"https://billing.example.com", "https://ops.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_BadIntegerFallsBack(t *testing.T) {
	t.Setenv("PORT", "eighty")

	assert.Equal(t, 8080, Load().Port)
}

func TestLoad_QualityScanInterval(t *testing.T) {
	t.Setenv("QUALITY_SCAN_INTERVAL", "15m")
	assert.Equal(t, 15*time.Minute, Load().QualityScanInterval)

	t.Setenv("QUALITY_SCAN_INTERVAL", "0")
	assert.Zero(t, Load().QualityScanInterval)

	t.Setenv("QUALITY_SCAN_INTERVAL", "often")
	assert.Equal(t, time.Hour, Load().QualityScanInterval)
}
