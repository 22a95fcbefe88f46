package main

import (
	"context"
	"time"

	"qrpay-certifier/internal/core/cache"
	"qrpay-certifier/internal/core/config"
	"qrpay-certifier/internal/core/logger"
	"qrpay-certifier/internal/core/server"
	"qrpay-certifier/internal/features/payment/adapters"
	"qrpay-certifier/internal/features/payment/handler"
	"qrpay-certifier/internal/features/payment/ports"
	"qrpay-certifier/internal/features/payment/service"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// runServe starts the operator console and blocks until ctx is cancelled.
func runServe(ctx context.Context, cfg *config.AppConfig, gateway *adapters.GatewayClient) error {
	l := logger.Get()

	var (
		lookup ports.OrderQueryService = gateway
		pinger handler.Pinger
	)

	if cfg.Cache.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Cache.RedisURL, "qrpay-certifier:"+cfg.Merchant.HuifuID)
		if err != nil {
			return err
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			// the console works without the cache, lookups then reach the gateway
			l.Warn("Status cache unreachable at startup", zap.Error(err))
		}

		// single status lookups only, settlement waits always reach the gateway
		lookup = adapters.NewCachedQueryService(gateway, redisCache, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		pinger = redisCache
		l.Info("Status cache enabled", zap.Int("ttl_seconds", cfg.Cache.TTLSeconds))
	}

	svc := service.NewPaymentService(gateway, lookup, cfg.Merchant.UserID)
	h := handler.NewPaymentHandler(svc, pollOptions(cfg.Polling), pinger).WithLifetime(ctx)

	srv := server.New(cfg)
	h.Register(srv.App)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Console shutdown failed", zap.Error(err))
		}
	}()

	return srv.Run()
}
