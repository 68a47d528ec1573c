package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	JWTExpirySeconds   int64
	CorsAllowedOrigins []string
	RequestBodyLimit   int64
	AutoMigrate        bool

	RabbitMQURL    string
	EventsExchange string

	RedisURL     string
	OrderLockTTL time.Duration

	// ClampNegativeFinalAmount floors finalAmount at zero when a discount exceeds the order cost.
	ClampNegativeFinalAmount bool
}

func Load() Config {
	cfg := Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPAddr:                 getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		JWTExpirySeconds:         getEnvInt64("JWT_EXPIRY", 3600),
		CorsAllowedOrigins:       splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RequestBodyLimit:         getEnvInt64("REQUEST_BODY_LIMIT", 1<<20),
		AutoMigrate:              getEnvBool("AUTO_MIGRATE", false),
		RabbitMQURL:              getEnv("RABBITMQ_URL", ""),
		EventsExchange:           getEnv("EVENTS_EXCHANGE", "inventory.events"),
		RedisURL:                 getEnv("REDIS_URL", ""),
		OrderLockTTL:             getEnvDuration("ORDER_LOCK_TTL", 10*time.Second),
		ClampNegativeFinalAmount: getEnvBool("CLAMP_NEGATIVE_FINAL_AMOUNT", false),
	}

	if cfg.JWTExpirySeconds <= 0 {
		cfg.JWTExpirySeconds = 3600
	}
	if cfg.RequestBodyLimit <= 0 {
		cfg.RequestBodyLimit = 1 << 20
	}
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = "dev-insecure-jwt-secret"
	}

	return cfg
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

func (c Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpirySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
