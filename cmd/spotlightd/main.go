package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/harborchat/spotlight/pkg/api"
	"github.com/harborchat/spotlight/pkg/authz"
	"github.com/harborchat/spotlight/pkg/config"
	"github.com/harborchat/spotlight/pkg/observability"
	"github.com/harborchat/spotlight/pkg/ratelimit"
	"github.com/harborchat/spotlight/pkg/roomtypes"
	"github.com/harborchat/spotlight/pkg/settings"
	"github.com/harborchat/spotlight/pkg/spotlight"
	"github.com/harborchat/spotlight/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.WithField("port", cfg.Server.Port).Info("starting spotlight server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.StartTelemetry(ctx, observability.TelemetryConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("OpenTelemetry init failed")
		os.Exit(1)
	}

	db, err := store.Connect(store.ConnectionConfig{
		URL:         cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		Timeout:     cfg.Database.Timeout,
		MaxLifetime: cfg.Database.MaxLifetime,
		MaxIdleTime: cfg.Database.MaxIdleTime,
	})
	if err != nil {
		logger.WithError(err).Error("database connection failed")
		os.Exit(1)
	}
	defer db.Close()

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
		store.StartPoolMetrics(ctx, db, metrics, 0)
	}

	stores := store.NewPostgres(db)
	checker := authz.NewSQLChecker(db, stores, cfg.Auth.PermissionCacheTTL, metrics)

	runtimeSettings := settings.New()
	if cfg.Settings.Path != "" {
		watcher := settings.NewFileWatcher(cfg.Settings.Path, runtimeSettings, logger)
		if err := watcher.Load(); err != nil {
			logger.WithError(err).Warn("settings file unreadable, using defaults")
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.WithError(err).Error("settings watcher stopped")
			}
		}()
	}

	limiter, memLimiter := buildLimiter(cfg, logger)

	// Background maintenance: expired rate-limit windows are dropped and the
	// permission cache is flushed so external role changes take effect.
	scheduler := cron.New()
	if memLimiter != nil {
		if _, err := scheduler.AddFunc("@every 1m", memLimiter.Cleanup); err != nil {
			logger.WithError(err).Error("failed to schedule limiter cleanup")
			os.Exit(1)
		}
	}
	if _, err := scheduler.AddFunc("@every 5m", checker.InvalidateCache); err != nil {
		logger.WithError(err).Error("failed to schedule permission cache flush")
		os.Exit(1)
	}
	scheduler.Start()

	service := spotlight.NewService(spotlight.Deps{
		Rooms:    stores,
		Users:    stores,
		Subs:     stores,
		Authz:    checker,
		Registry: roomtypes.DefaultRegistry(),
		Settings: runtimeSettings,
		Limiter:  limiter,
		Logger:   logger,
		Metrics:  metrics,
	})

	apiLogger := logrus.New()
	apiLogger.SetFormatter(&logrus.JSONFormatter{})
	server := api.NewServer(service, stores, metrics, apiLogger)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.WithError(err).Error("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown failed")
	}

	<-scheduler.Stop().Done()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("OpenTelemetry shutdown failed")
	}

	logger.Info("spotlight server stopped")
}

// buildLimiter selects the rate-limit backend: Redis when configured, so
// budgets hold across replicas, otherwise a per-process fixed window. The
// in-memory limiter is also returned for cleanup scheduling.
func buildLimiter(cfg *config.Config, logger *observability.Logger) (ratelimit.Limiter, *ratelimit.FixedWindowLimiter) {
	if cfg.Redis.URL == "" {
		limiter := ratelimit.NewFixedWindowLimiter(&cfg.RateLimit)
		return limiter, limiter
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.WithError(err).Warn("invalid redis URL, falling back to in-memory rate limiting")
		limiter := ratelimit.NewFixedWindowLimiter(&cfg.RateLimit)
		return limiter, limiter
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unreachable, falling back to in-memory rate limiting")
		limiter := ratelimit.NewFixedWindowLimiter(&cfg.RateLimit)
		return limiter, limiter
	}

	logger.Info("using redis-backed rate limiting")
	return ratelimit.NewDistributedLimiter(client, &cfg.RateLimit, ""), nil
}
