package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort          string
	LogLevel          string
	PostgresDSN       string
	DBDriver          string
	RedisURL          string
	JWTSecret         string
	InternalKey       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxIdle     time.Duration
	DBConnMaxLife     time.Duration
	RequestTimeout    time.Duration
	AnalyticsCacheTTL time.Duration
	AnalyticsPerMin   int
	RecomputeSchedule string
	RecomputeTimeout  time.Duration
	RecomputeOnStart  bool
	AutoMigrate       bool
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		PostgresDSN:       getEnv("DATABASE_URL", ""),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "pgx")),
		RedisURL:          getEnv("REDIS_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		InternalKey:       getEnv("INTERNAL_API_KEY", ""),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:     getDuration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:     getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 10*time.Second),
		AnalyticsCacheTTL: getDuration("ANALYTICS_CACHE_TTL", 30*time.Second),
		AnalyticsPerMin:   getInt("ANALYTICS_RATE_LIMIT_PER_MIN", 60),
		RecomputeSchedule: getEnv("RECOMPUTE_SCHEDULE", "0 * * * *"),
		RecomputeTimeout:  getDuration("RECOMPUTE_TIMEOUT", 10*time.Minute),
		RecomputeOnStart:  getBool("RECOMPUTE_ON_START", false),
		AutoMigrate:       getBool("AUTO_MIGRATE", true),
	}
	if cfg.DBDriver == "pq" || cfg.DBDriver == "postgresql" {
		cfg.DBDriver = "postgres"
	}

	missing := make([]string, 0, 2)
	if cfg.PostgresDSN == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if cfg.DBDriver != "pgx" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER must be pgx or postgres, got %q", cfg.DBDriver)
	}
	if cfg.AnalyticsPerMin < 0 {
		return nil, fmt.Errorf("ANALYTICS_RATE_LIMIT_PER_MIN must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
