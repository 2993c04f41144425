package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	LogLevel         string
	HTTPListenAddr   string
	AIProvider       string
	GeminiAPIKeys    []string
	GeminiModel      string
	GeminiTimeout    time.Duration
	GeminiCooldown   time.Duration
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	OpenAITimeout    time.Duration
	StoreDriver      string
	DatabaseURL      string
	SQLitePath       string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	MetricsNamespace string
	AllowedOrigins   []string
	PlanRateLimit    int64
	PlanRateWindow   time.Duration
}

// Load returns configuration populated from environment variables with fallbacks.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getenvDefault("APP_ENV", "development"),
		LogLevel:         getenvDefault("LOG_LEVEL", "info"),
		HTTPListenAddr:   getenvDefault("HTTP_LISTEN_ADDR", ":8080"),
		AIProvider:       strings.ToLower(getenvDefault("AI_PROVIDER", "gemini")),
		GeminiAPIKeys:    splitAndTrim(trimmedEnv("GEMINI_KEYS")),
		GeminiModel:      getenvDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:     trimmedEnv("OPENAI_API_KEY"),
		OpenAIModel:      getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    trimmedEnv("OPENAI_BASE_URL"),
		StoreDriver:      strings.ToLower(getenvDefault("STORE_DRIVER", "memory")),
		DatabaseURL:      trimmedEnv("DATABASE_URL"),
		SQLitePath:       getenvDefault("SQLITE_PATH", "data/finpilot.db"),
		RedisAddr:        trimmedEnv("REDIS_ADDR"),
		RedisPassword:    trimmedEnv("REDIS_PASSWORD"),
		MetricsNamespace: getenvDefault("METRICS_NAMESPACE", "finpilot"),
		AllowedOrigins:   splitAndTrim(getenvDefault("ALLOWED_ORIGINS", "*")),
	}

	var err error
	if cfg.GeminiTimeout, err = time.ParseDuration(getenvDefault("GEMINI_TIMEOUT", "20s")); err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TIMEOUT duration: %w", err)
	}
	if cfg.GeminiCooldown, err = time.ParseDuration(getenvDefault("GEMINI_COOLDOWN", "1h")); err != nil {
		return nil, fmt.Errorf("invalid GEMINI_COOLDOWN duration: %w", err)
	}
	if cfg.OpenAITimeout, err = time.ParseDuration(getenvDefault("OPENAI_TIMEOUT", "20s")); err != nil {
		return nil, fmt.Errorf("invalid OPENAI_TIMEOUT duration: %w", err)
	}
	if cfg.PlanRateWindow, err = time.ParseDuration(getenvDefault("PLAN_RATE_WINDOW", "10m")); err != nil {
		return nil, fmt.Errorf("invalid PLAN_RATE_WINDOW duration: %w", err)
	}

	if limitStr := getenvDefault("PLAN_RATE_LIMIT", "5"); limitStr != "" {
		limit, convErr := strconv.ParseInt(limitStr, 10, 64)
		if convErr != nil {
			return nil, fmt.Errorf("invalid PLAN_RATE_LIMIT value: %w", convErr)
		}
		cfg.PlanRateLimit = limit
	}

	if redisDBStr := getenvDefault("REDIS_DB", "0"); redisDBStr != "" {
		db, convErr := strconv.Atoi(redisDBStr)
		if convErr != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value: %w", convErr)
		}
		cfg.RedisDB = db
	}

	switch cfg.AIProvider {
	case "gemini":
		if len(cfg.GeminiAPIKeys) == 0 {
			return nil, fmt.Errorf("GEMINI_KEYS cannot be empty when AI_PROVIDER=gemini")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q (expected gemini or openai)", cfg.AIProvider)
	}

	switch cfg.StoreDriver {
	case "memory", "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (expected memory, sqlite, or postgres)", cfg.StoreDriver)
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}

func trimmedEnv(key string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return ""
}
