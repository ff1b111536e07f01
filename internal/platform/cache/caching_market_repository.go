// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"crypto_tracker/internal/feature/market/domain/entity"
	"crypto_tracker/internal/feature/market/usecase"
)

// TTLs holds per-endpoint cache lifetimes. Zero values fall back to defaults.
type TTLs struct {
	Tickers time.Duration // bulk ticker list used by search
	Ticker  time.Duration // single-symbol ticker
	Candles time.Duration
}

// DefaultTTLs match the client's polling cadence: tickers every 5s, candles every 60s.
var DefaultTTLs = TTLs{
	Tickers: 60 * time.Second,
	Ticker:  5 * time.Second,
	Candles: 30 * time.Second,
}

// CachingMarketRepository decorates a MarketRepository with Redis caching.
// Concurrent misses for the same key share one upstream call.
type CachingMarketRepository struct {
	inner     usecase.MarketRepository
	rdb       *redis.Client
	ttl       TTLs
	namespace string
	group     singleflight.Group
}

var _ usecase.MarketRepository = (*CachingMarketRepository)(nil)

// NewCachingMarketRepository decorates a MarketRepository with Redis caching.
// rdb may be nil, in which case only request coalescing is applied.
// If namespace is empty, it uses "market".
func NewCachingMarketRepository(rdb *redis.Client, ttl TTLs, inner usecase.MarketRepository, namespace string) *CachingMarketRepository {
	if ttl.Tickers <= 0 {
		ttl.Tickers = DefaultTTLs.Tickers
	}
	if ttl.Ticker <= 0 {
		ttl.Ticker = DefaultTTLs.Ticker
	}
	if ttl.Candles <= 0 {
		ttl.Candles = DefaultTTLs.Candles
	}
	if namespace == "" {
		namespace = "market"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// GetKlines returns candles from cache, falling back to the inner repository.
func (c *CachingMarketRepository) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]entity.Candle, error) {
	key := fmt.Sprintf("%s:klines:%s:%s:%d", c.namespace, safe(symbol), safe(interval), limit)
	return load(ctx, c, key, c.ttl.Candles, func(ctx context.Context) ([]entity.Candle, error) {
		return c.inner.GetKlines(ctx, symbol, interval, limit)
	})
}

// GetTicker returns a ticker from cache, falling back to the inner repository.
func (c *CachingMarketRepository) GetTicker(ctx context.Context, symbol string) (*entity.Ticker, error) {
	key := fmt.Sprintf("%s:ticker:%s", c.namespace, safe(symbol))
	return load(ctx, c, key, c.ttl.Ticker, func(ctx context.Context) (*entity.Ticker, error) {
		return c.inner.GetTicker(ctx, symbol)
	})
}

// ListTickers returns the bulk ticker list from cache, falling back to the inner repository.
func (c *CachingMarketRepository) ListTickers(ctx context.Context) ([]entity.Ticker, error) {
	key := c.namespace + ":tickers"
	return load(ctx, c, key, c.ttl.Tickers, c.inner.ListTickers)
}

// load implements read-through caching for a single key.
// Errors from the inner repository are never cached.
// The shared upstream call ignores caller cancellation and is bounded by the inner
// repository's timeout. Each caller returns on its own ctx.
func load[T any](ctx context.Context, c *CachingMarketRepository, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	// 1) Check cache
	if c.rdb != nil {
		if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var out T
			if err := json.Unmarshal(b, &out); err == nil {
				return out, nil
			}
			// Delete corrupted cache entry
			_ = c.rdb.Del(ctx, key).Err()
		}
	}

	// 2) Fallback to upstream, one call per key at a time
	ch := c.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		out, err := fetch(fctx)
		if err != nil {
			return out, err
		}
		// 3) Store in cache (best effort)
		if c.rdb != nil {
			if b, err := json.Marshal(out); err == nil {
				_ = c.rdb.Set(fctx, key, b, ttl).Err()
			}
		}
		return out, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// safe escapes a key segment. The escaping is reversible, so distinct inputs
// never share a key, and ":" never appears inside a segment.
func safe(s string) string {
	return url.QueryEscape(s)
}
