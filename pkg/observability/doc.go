// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry wiring, and panic recovery for the spotlight service.
//
// Logging uses log/slog with a JSON handler; request-scoped fields
// (request id, user id) travel through context. Metrics cover the HTTP
// surface, the search core, rate limiting, and the permission cache.
package observability
