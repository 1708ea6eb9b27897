// Package config handles environment-driven configuration for the API server.
package config

import "os"

// Config holds all runtime settings for the server.
type Config struct {
	Port      string
	DBPath    string
	UploadDir string
	LogLevel  string
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() *Config {
	return &Config{
		Port:      getEnv("DORMEASE_PORT", "8080"),
		DBPath:    getEnv("DORMEASE_DB_PATH", "dormease.db"),
		UploadDir: getEnv("DORMEASE_UPLOAD_DIR", "uploads"),
		LogLevel:  getEnv("DORMEASE_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
