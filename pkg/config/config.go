package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string

	// Deployment tuning knobs for the chat core. These are not business
	// logic and must stay externally configurable.
	UnreadCacheTTL      time.Duration
	UnreadCacheSweep    time.Duration
	RateLimitWindow     time.Duration
	RateLimitMaxRequest int
	RateLimitSweep      time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),

		UnreadCacheTTL:      getEnvAsSeconds("UNREAD_CACHE_TTL_SECONDS", 30),
		UnreadCacheSweep:    getEnvAsSeconds("UNREAD_CACHE_SWEEP_SECONDS", 60),
		RateLimitWindow:     getEnvAsSeconds("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxRequest: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 30),
		RateLimitSweep:      getEnvAsSeconds("RATE_LIMIT_SWEEP_SECONDS", 120),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue int64) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil && intValue > 0 {
			return time.Duration(intValue) * time.Second
		}
	}
	return time.Duration(defaultValue) * time.Second
}
