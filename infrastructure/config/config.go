package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string

	JWTSecret string
	TokenTTL  time.Duration

	ServerHost  string
	ServerPort  string
	Environment string

	RateLimitWindow         time.Duration
	RateLimitMaxPerOrigin   int
	RateLimitMaxPerIdentity int
	BootstrapPaths          []string

	BcryptCost int

	LogLevel  string
	LogFormat string
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		ServerHost:  getEnvOrDefault("SERVER_HOST", "localhost"),
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		Environment: getEnvOrDefault("ENV", "development"),
		BcryptCost:  getEnvOrDefaultInt("BCRYPT_COST", 10),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	cfg.TokenTTL = getEnvSeconds("JWT_TOKEN_TTL", 900)
	cfg.RateLimitWindow = getEnvSeconds("RATE_LIMIT_WINDOW", 60)
	cfg.RateLimitMaxPerOrigin = getEnvOrDefaultInt("RATE_LIMIT_MAX_PER_ORIGIN", 100)
	cfg.RateLimitMaxPerIdentity = getEnvOrDefaultInt("RATE_LIMIT_MAX_PER_IDENTITY", 60)
	cfg.BootstrapPaths = parseList(getEnvOrDefault("BOOTSTRAP_PATHS", "/v1/users"))

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvOrDefaultInt(key, defaultSeconds)) * time.Second
}

func parseList(value string) []string {
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
