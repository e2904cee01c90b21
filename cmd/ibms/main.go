package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"ibms/internal/auth"
	"ibms/internal/cache"
	"ibms/internal/cli"
	apphttp "ibms/internal/http"
	"ibms/internal/ifsc"
	applog "ibms/internal/log"
	"ibms/internal/services"
)

const cacheCleanupInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)

	caches := cache.NewManager(logger.Logger)
	cacheStats := map[string]func() cache.Stats{}

	// Revocations live in Redis when configured so that a logout holds across
	// replicas; otherwise they are process-local.
	var (
		revoked     auth.RevocationStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		client, err := auth.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("Redis unavailable, keeping revoked tokens in memory",
				applog.FieldErrorType, applog.ErrorTypeNetwork,
				applog.FieldError, err,
				"addr", cfg.RedisAddr)
		} else {
			redisClient = client
			revoked = auth.NewRedisRevocations(client)
			logger.Info("Token revocations stored in Redis", "addr", cfg.RedisAddr)
		}
	}
	if revoked == nil {
		mem := auth.NewMemoryRevocations()
		caches.Register(mem.Cache())
		cacheStats["revocations"] = mem.Cache().Stats
		revoked = mem
	}

	authSvc := auth.NewService(res.Store, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL), revoked)
	created, err := authSvc.EnsureBootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Error("Failed to create bootstrap admin",
			applog.FieldOperation, applog.OpStartup,
			applog.FieldError, err)
		os.Exit(1)
	}
	if created {
		logger.Info("Bootstrap admin created", "email", cfg.AdminEmail)
	}

	gen := &services.Generation{}
	reports := services.NewReportService(res.Store, gen, services.ReportOptions{
		CacheTTL:   cfg.ReportCacheTTL,
		WindowDays: cfg.TrailingWindow,
	})
	caches.Register(reports)
	cacheStats["reports"] = reports.CacheStats

	lookup := ifsc.NewClient(cfg.IFSCBaseURL, cfg.IFSCTimeout)
	caches.Register(lookup.Cache())
	cacheStats["ifsc"] = lookup.Cache().Stats

	caches.StartCleanup(cacheCleanupInterval)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Investors:          services.NewInvestorService(res.Store, res.Publisher, gen),
		Portfolios:         services.NewPortfolioService(res.Store, res.Publisher, gen),
		Admin:              services.NewAdminService(res.Store, res.Publisher, gen),
		Reports:            reports,
		Auth:               authSvc,
		IFSC:               lookup,
		Store:              res.Store,
		CacheStats:         cacheStats,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.ReadHeaderTimeout = 5 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Redis close error", applog.FieldError, err)
			}
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting ibms server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", res.Publisher != nil,
		"seeded", res.Seeded)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
