package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all process configuration. It is built once in main and passed
// down explicitly; nothing else in the codebase reads environment variables.
type Config struct {
	DatabaseURL   string
	HTTPPort      string
	LogLevel      string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
}

func Load() (Config, error) {
	_ = godotenv.Load() // .env is optional; real env vars win either way

	cfg := Config{
		DatabaseURL:   getEnv("DATABASE_URL", "site_backend.db"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.AdminPassword == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD environment variable is required")
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
