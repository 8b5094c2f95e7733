package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harborchat/spotlight/pkg/observability"
	"github.com/harborchat/spotlight/pkg/ratelimit"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Settings      SettingsConfig
	RateLimit     ratelimit.Config
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	Timeout     time.Duration
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// RedisConfig holds the optional Redis connection settings. When URL is
// empty the service falls back to in-memory rate limiting.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// SettingsConfig points at the workspace settings file watched at runtime.
// An empty path disables the watcher and keeps the defaults.
type SettingsConfig struct {
	Path string
}

// AuthConfig holds permission checker settings
type AuthConfig struct {
	PermissionCacheTTL time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SPOTLIGHT_HOST", "0.0.0.0"),
			Port:            getEnv("SPOTLIGHT_PORT", "8080"),
			ReadTimeout:     getEnvDuration("SPOTLIGHT_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SPOTLIGHT_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SPOTLIGHT_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SPOTLIGHT_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:         getEnv("SPOTLIGHT_POSTGRES_URL", ""),
			MaxConns:    getEnvInt("SPOTLIGHT_POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("SPOTLIGHT_POSTGRES_MIN_CONNS", 5),
			Timeout:     getEnvDuration("SPOTLIGHT_POSTGRES_TIMEOUT", 10*time.Second),
			MaxLifetime: getEnvDuration("SPOTLIGHT_POSTGRES_MAX_LIFETIME", 30*time.Minute),
			MaxIdleTime: getEnvDuration("SPOTLIGHT_POSTGRES_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      getEnv("SPOTLIGHT_REDIS_URL", ""),
			Password: getEnv("SPOTLIGHT_REDIS_PASSWORD", ""),
			DB:       getEnvInt("SPOTLIGHT_REDIS_DB", 0),
		},
		Settings: SettingsConfig{
			Path: getEnv("SPOTLIGHT_SETTINGS_PATH", ""),
		},
		RateLimit: ratelimit.Config{
			RequestsPerWindow: getEnvInt("SPOTLIGHT_RATELIMIT_REQUESTS", 100),
			WindowDuration:    getEnvDuration("SPOTLIGHT_RATELIMIT_WINDOW", 100*time.Second),
		},
		Auth: AuthConfig{
			PermissionCacheTTL: getEnvDuration("SPOTLIGHT_PERMISSION_CACHE_TTL", time.Minute),
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.ParseLogLevel(getEnv("SPOTLIGHT_LOG_LEVEL", "info")),
			MetricsEnabled:     getEnvBool("SPOTLIGHT_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("SPOTLIGHT_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("SPOTLIGHT_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("SPOTLIGHT_OTEL_SERVICE_NAME", "spotlight"),
			OTelServiceVersion: getEnv("SPOTLIGHT_OTEL_SERVICE_VERSION", "1.0.0"),
			OTelInsecure:       getEnvBool("SPOTLIGHT_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.RateLimit.RequestsPerWindow <= 0 {
		return fmt.Errorf("rate limit budget must be positive")
	}
	if c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
