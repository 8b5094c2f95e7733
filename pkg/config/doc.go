// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	SPOTLIGHT_HOST="0.0.0.0"
//	SPOTLIGHT_PORT="8080"
//	SPOTLIGHT_READ_TIMEOUT="15s"
//	SPOTLIGHT_WRITE_TIMEOUT="15s"
//
// Database settings:
//
//	SPOTLIGHT_POSTGRES_URL="postgres://localhost/spotlight"
//	SPOTLIGHT_POSTGRES_MAX_CONNS="20"
//	SPOTLIGHT_POSTGRES_MIN_CONNS="5"
//
// Rate limit settings:
//
//	SPOTLIGHT_RATELIMIT_REQUESTS="100"
//	SPOTLIGHT_RATELIMIT_WINDOW="100s"
//	SPOTLIGHT_REDIS_URL="redis://localhost:6379"  # optional, shares counters across replicas
//
// Runtime settings file:
//
//	SPOTLIGHT_SETTINGS_PATH="/etc/spotlight/settings.json"
//
// Observability settings:
//
//	SPOTLIGHT_LOG_LEVEL="info"  # debug, info, warn, error
//	SPOTLIGHT_METRICS_ENABLED="true"
//	SPOTLIGHT_OTEL_ENABLED="true"
//	SPOTLIGHT_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/store: Uses database configuration
//   - pkg/ratelimit: Uses rate limit configuration
//   - pkg/observability: Uses observability configuration
package config
