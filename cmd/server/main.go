// Package main provides the API server entry point for InsightSphere.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/insight-sphere/internal/api"
	"github.com/insight-sphere/internal/circuitbreaker"
	"github.com/insight-sphere/internal/config"
	"github.com/insight-sphere/internal/logging"
	"github.com/insight-sphere/internal/market"
	"github.com/insight-sphere/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		provider market.Provider
		cache    api.CacheStatusSource
	)

	if cfg.Upstream.MockMode {
		logger.Info("MOCK_MODE enabled, serving sample market data")
		provider = market.NewMockProvider()
	} else {
		breakerCfg := circuitbreaker.DefaultConfig("coingecko")
		breakerCfg.Logger = logger
		upstream, err := market.NewCoinGecko(&market.CoinGeckoConfig{
			BaseURL:       cfg.Upstream.BaseURL,
			Timeout:       cfg.Upstream.Timeout,
			TopN:          cfg.Upstream.TopN,
			RetryAttempts: cfg.Upstream.RetryAttempts,
			Breaker:       circuitbreaker.NewCircuitBreaker(breakerCfg),
			Logger:        logger,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to create upstream client")
		}
		provider = upstream

		redisCache, err := storage.NewRedisCache(&cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, serving uncached")
		} else {
			defer redisCache.Close()
			cacheService := storage.NewCacheService(redisCache, cfg.Cache.TTL)
			provider = market.NewCachedProvider(upstream, cacheService, logger)
			cache = cacheService
			logger.WithField("ttl", cfg.Cache.TTL.String()).Info("Upstream cache enabled")
		}
	}

	server := api.NewServer(&api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.WriteTimeout,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, provider, cache, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("API server failed")
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("API server stopped")
}
