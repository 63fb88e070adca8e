package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Session settings
	SessionTTLMinutes     int
	IdleTimeoutSecs       int
	IdleWorkerPollSecs    int
	TickHz                int
	BroadcastHz           int
	MaxConcurrentSessions int

	// Gameplay tuning overlay (TOML), optional
	TuningFile string

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/gravityputt?sslmode=disable"),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		SessionTTLMinutes:     getEnvInt("SESSION_TTL_MINUTES", 60*24),
		IdleTimeoutSecs:       getEnvInt("IDLE_TIMEOUT_SECONDS", 300),
		IdleWorkerPollSecs:    getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),
		TickHz:                getEnvInt("TICK_HZ", 60),
		BroadcastHz:           getEnvInt("BROADCAST_HZ", 20),
		MaxConcurrentSessions: getEnvInt("MAX_CONCURRENT_SESSIONS", 500),

		TuningFile: getEnv("TUNING_FILE", ""),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

// SessionTTL is how long a persisted snapshot stays resumable.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSecs) * time.Second
}

func (c *Config) IdlePollInterval() time.Duration {
	return time.Duration(c.IdleWorkerPollSecs) * time.Second
}

// BroadcastEvery converts the broadcast rate into a tick stride.
func (c *Config) BroadcastEvery() int {
	if c.BroadcastHz <= 0 || c.BroadcastHz >= c.TickHz {
		return 1
	}
	return c.TickHz / c.BroadcastHz
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
