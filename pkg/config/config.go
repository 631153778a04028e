package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	API      APIConfig
	Auth     AuthConfig
	Notifier NotifierConfig
	Redis    RedisConfig
	OTEL     OTELConfig
}

// AppConfig holds process-level settings
type AppConfig struct {
	Env      string
	LogLevel string
}

// APIConfig holds the REST backend settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds the credential used for an authenticated session
type AuthConfig struct {
	Token    string
	Username string
	Password string
}

// NotifierConfig selects where user-visible notifications go
type NotifierConfig struct {
	Kind         string
	Channel      string
	WebhookURL   string
	WebhookToken string
	// QueueSize bounds the notifications waiting for remote delivery
	QueueSize int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

const (
	// NotifierLog writes notifications to the structured log
	NotifierLog = "log"
	// NotifierRedis publishes notifications on a Redis channel
	NotifierRedis = "redis"
	// NotifierWebhook posts notifications to an HTTP endpoint
	NotifierWebhook = "webhook"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
			Timeout: getEnvAsDuration("API_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			Token:    getEnv("API_TOKEN", ""),
			Username: getEnv("API_USERNAME", ""),
			Password: getEnv("API_PASSWORD", ""),
		},
		Notifier: NotifierConfig{
			Kind:         getEnv("NOTIFIER", NotifierLog),
			Channel:      getEnv("NOTIFY_CHANNEL", "mediflow:notifications"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookToken: getEnv("NOTIFY_WEBHOOK_TOKEN", ""),
			QueueSize:    getEnvAsInt("NOTIFY_QUEUE_SIZE", 64),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "mediflow-admin"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.API.Timeout)
	}
	switch c.Notifier.Kind {
	case NotifierLog, NotifierRedis:
	case NotifierWebhook:
		if c.Notifier.WebhookURL == "" {
			return fmt.Errorf("NOTIFY_WEBHOOK_URL is required when NOTIFIER=webhook")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER %q", c.Notifier.Kind)
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or a bare number of milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
