// Package config loads server configuration from the environment.
//
// A .env file in the working directory is read first when present; real
// environment variables win over it. Command-line flags in cmd/server
// override both.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration.
type Config struct {
	Port           int
	DBPath         string
	LogLevel       string
	Development    bool
	Workers        int // month-search fan-out
	AllowedOrigins []string

	// QualityScanInterval is the background ledger scan period; 0 disables it.
	QualityScanInterval time.Duration
}

// Load reads configuration from .env and the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:           getEnvInt("PORT", 8080),
		DBPath:         getEnv("DB_PATH", "coldstore.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Development:    getEnv("APP_ENV", "development") == "development",
		Workers:        getEnvInt("MONTH_SEARCH_WORKERS", 4),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),

		QualityScanInterval: getEnvDuration("QUALITY_SCAN_INTERVAL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	if strings.TrimSpace(v) == "0" {
		return 0
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return d
}
