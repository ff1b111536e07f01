// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"crypto_tracker/internal/feature/market/adapters/binance"
	marketusecase "crypto_tracker/internal/feature/market/usecase"
	"crypto_tracker/internal/platform/cache"
	infrahttp "crypto_tracker/internal/platform/http"
	"crypto_tracker/internal/shared/ratelimiter"
)

// NewMarket creates a rate-limited Binance client wrapped with Redis caching.
// rdb may be nil, in which case responses are not cached.
func NewMarket(cfg binance.Config, rdb *redisv9.Client) marketusecase.MarketRepository {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	limiter := ratelimiter.NewRateLimiter("binance", cfg.RatePerSecond, time.Second)
	upstream := binance.NewBinanceMarket(cfg, httpClient, limiter)
	return cache.NewCachingMarketRepository(rdb, cache.DefaultTTLs, upstream, "market")
}

// NewMarketUsecase creates the market usecase backed by NewMarket.
func NewMarketUsecase(cfg binance.Config, rdb *redisv9.Client) *marketusecase.MarketUsecase {
	return marketusecase.NewMarketUsecase(NewMarket(cfg, rdb))
}
