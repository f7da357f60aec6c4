// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ubot-platform/internal/application"
	"ubot-platform/internal/config"
	"ubot-platform/internal/domain/ports/repository"
	"ubot-platform/internal/infra/api"
	"ubot-platform/internal/infra/api/apiv1"
	"ubot-platform/internal/infra/db"
	"ubot-platform/internal/infra/logging"
	"ubot-platform/internal/infra/metrics"
	red "ubot-platform/internal/infra/redis"
	"ubot-platform/internal/infra/sched"
	"ubot-platform/internal/infra/security"
	"ubot-platform/internal/infra/worker"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		// logger is not configured yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.Database.Driver)

	// ---- Storage ----
	store, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer store.Close()

	// ---- Redis (optional) ----
	var (
		owners  repository.OwnerRepository = store.Owners
		limiter api.Limiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		owners = red.NewOwnerRepoCacheDecorator(store.Owners, redisClient, cfg.Redis.TTL)
		if cfg.RateLimit.Enabled {
			limiter = red.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		}
	}

	// ---- Encryption ----
	cipher, err := security.FromConfig(cfg.Security)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}
	if cipher == nil {
		logger.Warn().Msg("security.encryption_key not set; phone numbers will not be stored")
	}

	// ---- Facade ----
	app := application.Build(cfg, store, owners, cipher, logger)
	if _, err := app.EnsureOwner(ctx, "admin", "Administrator"); err != nil {
		logger.Fatal().Err(err).Msg("register default owner")
	}

	// ---- Background jobs ----
	pool := worker.NewPool(cfg.Worker.Size, cfg.Worker.Queue, logger)
	pool.Start(ctx)
	defer pool.Stop()

	stats := sched.NewVoucherStatsWorker(time.Minute, store.Vouchers, logger)
	go func() { _ = stats.Run(ctx) }()

	// ---- HTTP ----
	handlers := apiv1.NewServer(app, pool, apiv1.Options{
		AdminKey:            cfg.Admin.Key,
		DefaultValidityDays: cfg.Vouchers.DefaultValidityDays,
		ServiceName:         "ubot-platform",
		Dev:                 cfg.Runtime.Dev,
	}, logger)
	router := api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Limiter:        limiter,
		TrustProxy:     cfg.Server.TrustProxy,
	}, logger)
	server := api.NewServer(cfg.Server, router, logger)

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
