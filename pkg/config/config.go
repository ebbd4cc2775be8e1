package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Upload        UploadConfig
	Calendar      CalendarConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	ClientOrigin       string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type UploadConfig struct {
	MaxBytes int64
}

type CalendarConfig struct {
	DefaultTermEnd string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 3001),
			ClientOrigin:       getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		},
		Calendar: CalendarConfig{
			DefaultTermEnd: getEnv("CALENDAR_DEFAULT_TERM_END", "2026-03-31"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if _, err := time.Parse("2006-01-02", cfg.Calendar.DefaultTermEnd); err != nil {
		return nil, fmt.Errorf("CALENDAR_DEFAULT_TERM_END must be YYYY-MM-DD: %w", err)
	}
	if cfg.Upload.MaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return cfg, nil
}

// Addr returns the host:port the API listens on
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
