package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"kanban_board/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string // empty: in-memory store
	RedisURL    string // empty: no cross-instance fan-out, in-memory rate limiting

	JWTSecret    string
	AuthRequired bool
	TokenTTL     time.Duration

	// When true a cross-column move overwrites task status with the destination
	// column title (if that title is a known status).
	StatusFollowsColumn bool

	APIRateLimit  int
	APIRateWindow time.Duration
	// per user, on the drop endpoint
	DropRateLimit  int
	DropRateWindow time.Duration
	AllowedOrigin  string

	ChangesChannel string

	LogLevel  string
	LogFormat string
}

// Load reads the .env file (if any) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:             getEnv("APP_PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AuthRequired:        getBool("AUTH_REQUIRED", false),
		TokenTTL:            time.Duration(getInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		StatusFollowsColumn: getBool("STATUS_FOLLOWS_COLUMN", false),
		APIRateLimit:        getInt("API_RATE_LIMIT", 120),
		APIRateWindow:       time.Duration(getInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		DropRateLimit:       getInt("DROP_RATE_LIMIT", 60),
		DropRateWindow:      time.Duration(getInt("DROP_RATE_WINDOW_SECONDS", 10)) * time.Second,
		AllowedOrigin:       os.Getenv("ALLOWED_ORIGIN"),
		ChangesChannel:      getEnv("CHANGES_CHANNEL", "board:changes"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	if cfg.AuthRequired && cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set but AUTH_REQUIRED=true")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// positive integers only, anything else falls back to def
func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
