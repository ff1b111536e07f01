package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiterは、トークンバケット方式で外部API呼び出しの頻度を制限します。
// 複数のgoroutineから同時に利用できます。
type RateLimiter struct {
	limiter *rate.Limiter
	name    string
}

// NewRateLimiterは interval あたり limit 回までの呼び出しを許可するRateLimiterを生成します。
// バースト幅は limit と同じです。limit が0以下の場合は無制限になります。
func NewRateLimiter(name string, limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0), name: name}
	}
	every := rate.Every(interval / time.Duration(limit))
	return &RateLimiter{limiter: rate.NewLimiter(every, limit), name: name}
}

// Waitはトークンが得られるまで待機します。
// ctx がキャンセルされるか、期限内にトークンが得られない場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return rl.limiter.Wait(ctx)
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	slog.Debug("rate limit reached, waiting", "limiter", rl.name, "delay", delay)

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
