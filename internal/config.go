package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	LogLevel       string
	Port           uint16
	AllowedOrigins []string // CORS allow-list; configuration endpoints are only reachable from these
	Groq           GroqConfig
	SMTP           SMTPConfig
	RateLimit      RateLimitConfig
}

// GroqConfig holds credentials for the text-completion provider.
// APIKey may be empty: drafting then runs in degraded mode and
// generation requests are rejected as unconfigured.
type GroqConfig struct {
	APIKey string
	Model  string
}

// SMTPConfig holds the relay endpoint. The account credentials themselves are
// never read from the environment; they arrive at runtime via /api/setup-gmail.
type SMTPConfig struct {
	Host string
	Port int
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:            getEnv("ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnvInt("PORT", 5000),
		AllowedOrigins: splitList(getEnv("CLIENT_URL", "http://localhost:3000")),
		Groq: GroqConfig{
			APIKey: getEnv("GROQ_API_KEY", ""),
			Model:  getEnv("GROQ_MODEL", "llama3-70b-8192"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port: int(getEnvInt("SMTP_PORT", 465)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
			BurstSize:         int(getEnvInt("RATE_LIMIT_BURST", 20)),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 16); err == nil {
			return uint16(n)
		}
		slog.Default().Warn("Invalid integer in environment. Using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Default().Warn("Invalid number in environment. Using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

// splitList parses a comma-separated environment value into a trimmed list.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
