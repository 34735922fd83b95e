package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort        string
	DatabaseType      string
	DatabasePath      string
	DatabaseURL       string
	MigrationsPath    string
	TokenSecret       string
	TokenTTL          time.Duration
	CookieName        string
	BirthDateRequired bool
}

// Load reads configuration from the environment with sensible
// defaults. A .env file in the working directory is honored when
// present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:        getEnv("PORT", "8080"),
		DatabaseType:      getEnv("DB_TYPE", "sqlite"),
		DatabasePath:      getEnv("DB_PATH", "./growthlog.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "./migrations"),
		TokenSecret:       getEnv("TOKEN_SECRET", ""),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 5*365*24*time.Hour),
		CookieName:        getEnv("COOKIE_NAME", "guardian_token"),
		BirthDateRequired: getEnvBool("BIRTH_DATE_REQUIRED", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}
