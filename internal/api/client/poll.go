package client

import (
	"context"
	"time"

	"crypto_tracker/internal/api"
)

const (
	// TickerPollInterval はティッカーの更新間隔です。
	TickerPollInterval = 5 * time.Second
	// CandlesPollInterval はローソク足の更新間隔です。
	CandlesPollInterval = time.Minute
)

// Poll は fetch を即座に1回呼び出し、その後 interval ごとに呼び出して結果を onResult に渡します。
// fetch のエラーでは停止せず、ctx が終了するまでブロックします。戻り値は ctx.Err() です。
func Poll[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), onResult func(T, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v, err := fetch(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		onResult(v, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PollTicker は TickerPollInterval ごとにティッカーを取得します。
func (c *Client) PollTicker(ctx context.Context, symbol string, onResult func(api.Ticker, error)) error {
	return Poll(ctx, TickerPollInterval, func(ctx context.Context) (api.Ticker, error) {
		return c.Ticker(ctx, symbol)
	}, onResult)
}

// PollCandles は CandlesPollInterval ごとにローソク足を取得します。
func (c *Client) PollCandles(ctx context.Context, symbol, interval string, onResult func([]api.Candle, error)) error {
	return Poll(ctx, CandlesPollInterval, func(ctx context.Context) ([]api.Candle, error) {
		return c.Candles(ctx, symbol, interval)
	}, onResult)
}
