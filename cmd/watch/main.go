// watch はお気に入り銘柄のティッカーを端末に表示し続けます。
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"crypto_tracker/internal/api"
	"crypto_tracker/internal/api/client"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(client.BaseURLFromEnv())

	favs, err := c.ListFavorites(ctx)
	if err != nil {
		slog.Error("failed to list favorites", "error", err)
		os.Exit(1)
	}
	if len(favs) == 0 {
		fmt.Println("no favorites")
		return
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, f := range favs {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			err := c.PollTicker(ctx, symbol, func(t api.Ticker, err error) {
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					slog.Warn("ticker fetch failed", "symbol", symbol, "error", err)
					return
				}
				fmt.Printf("%-12s %16s %8s%%\n", t.Symbol, t.LastPrice, t.PriceChangePercent)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("polling stopped", "symbol", symbol, "error", err)
			}
		}(f.Symbol)
	}
	wg.Wait()
}
