package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"canvass/internal/platform/config"
	"canvass/internal/platform/httpserver"
	"canvass/internal/platform/logger"
	platformmetrics "canvass/internal/platform/metrics"
	"canvass/internal/platform/middleware"
	"canvass/internal/platform/redis"
	httptransport "canvass/internal/transport/http"
	"canvass/internal/verification/handler"
	"canvass/internal/verification/lookup"
	"canvass/internal/verification/metrics"
)

// main wires the verification endpoint: config, cache, rate limiter and the
// router, then serves until SIGINT or SIGTERM.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

	cfg, err := config.Load(os.Getenv("CANVASS_CONFIG"))
	if err == nil {
		err = cfg.ValidateVerifier()
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("verifier stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := platformmetrics.NewRegistry()
	m := metrics.New(reg)

	opts := []lookup.Option{lookup.WithMetrics(m), lookup.WithLogger(log)}
	switch cfg.Verifier.CacheBackend {
	case config.BackendMemory:
		opts = append(opts, lookup.WithCache(lookup.NewInMemoryCache(cfg.Verifier.CacheTTL)))
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, lookup.WithCache(lookup.NewRedisCache(client, cfg.Verifier.CacheTTL)))
	}
	svc := lookup.NewService(lookup.CannedSource{}, opts...)

	var limiter *middleware.IPRateLimiter
	if cfg.Verifier.RateLimit > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.Verifier.RateLimit, cfg.Verifier.RateBurst)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.Verifier.TrustedProxies)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(log, handler.New(svc, log), reg, limiter, m, proxies)
	srv := httpserver.New(cfg.Verifier.Addr, router, cfg.Verifier.ReadTimeout, cfg.Verifier.WriteTimeout)

	log.Info("starting verifier",
		"addr", cfg.Verifier.Addr,
		"cache", cfg.Verifier.CacheBackend,
		"rate_limit_per_minute", cfg.Verifier.RateLimit,
		"trusted_proxies", len(proxies),
	)
	return httpserver.Run(ctx, srv, cfg.Verifier.ShutdownGrace, log)
}
