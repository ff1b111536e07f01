package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto_tracker/internal/feature/market/domain/entity"
)

// mockMarketRepository はMarketRepositoryインターフェースのモック実装です。
type mockMarketRepository struct {
	getKlinesFn   func(ctx context.Context, symbol, interval string, limit int) ([]entity.Candle, error)
	getTickerFn   func(ctx context.Context, symbol string) (*entity.Ticker, error)
	listTickersFn func(ctx context.Context) ([]entity.Ticker, error)
}

func (m *mockMarketRepository) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]entity.Candle, error) {
	if m.getKlinesFn != nil {
		return m.getKlinesFn(ctx, symbol, interval, limit)
	}
	return nil, nil
}

func (m *mockMarketRepository) GetTicker(ctx context.Context, symbol string) (*entity.Ticker, error) {
	if m.getTickerFn != nil {
		return m.getTickerFn(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketRepository) ListTickers(ctx context.Context) ([]entity.Ticker, error) {
	if m.listTickersFn != nil {
		return m.listTickersFn(ctx)
	}
	return nil, nil
}

func TestMarketUsecase_GetCandles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		interval         string
		expectedInterval string
		wantErr          error
	}{
		{name: "default interval", interval: "", expectedInterval: "1h"},
		{name: "explicit interval", interval: "15m", expectedInterval: "15m"},
		{name: "weekly interval", interval: "1w", expectedInterval: "1w"},
		{name: "unsupported interval", interval: "2h", wantErr: ErrInvalidInterval},
		{name: "case sensitive interval", interval: "1H", wantErr: ErrInvalidInterval},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			repo := &mockMarketRepository{
				getKlinesFn: func(ctx context.Context, symbol, interval string, limit int) ([]entity.Candle, error) {
					called = true
					assert.Equal(t, "BTCUSDT", symbol)
					assert.Equal(t, tt.expectedInterval, interval)
					assert.Equal(t, CandleLimit, limit)
					return []entity.Candle{{Open: 1}}, nil
				},
			}
			uc := NewMarketUsecase(repo)

			candles, err := uc.GetCandles(context.Background(), "BTCUSDT", tt.interval)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, called, "repository must not be called for invalid interval")
				return
			}
			require.NoError(t, err)
			assert.True(t, called)
			assert.Len(t, candles, 1)
		})
	}
}

func TestMarketUsecase_GetTicker_PropagatesError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("upstream down")
	uc := NewMarketUsecase(&mockMarketRepository{
		getTickerFn: func(ctx context.Context, symbol string) (*entity.Ticker, error) {
			return nil, expectedErr
		},
	})

	_, err := uc.GetTicker(context.Background(), "BTCUSDT")

	assert.ErrorIs(t, err, expectedErr)
}

func tickers() []entity.Ticker {
	return []entity.Ticker{
		{Symbol: "BTCUSDT", LastPrice: "97000.1", QuoteVolume: "1500000000.5"},
		{Symbol: "ETHUSDT", LastPrice: "3100.2", QuoteVolume: "900000000"},
		{Symbol: "BTCUSDC", LastPrice: "97001.0", QuoteVolume: "9999999999"},
		{Symbol: "WBTCUSDT", LastPrice: "96990.0", QuoteVolume: "2000"},
		{Symbol: "ETHBTC", LastPrice: "0.032", QuoteVolume: "500"},
		{Symbol: "BTCDOWNUSDT", LastPrice: "0.01", QuoteVolume: "30000"},
	}
}

func symbolsOf(ts []entity.Ticker) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Symbol)
	}
	return out
}

// TestMarketUsecase_Search は USDT 建て・query 一致・売買代金降順・件数制限を検証します。
func TestMarketUsecase_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "query BTC returns USDT pairs containing BTC by quote volume",
			query:    "BTC",
			expected: []string{"BTCUSDT", "BTCDOWNUSDT", "WBTCUSDT"},
		},
		{
			name:     "lowercase query is upper-cased",
			query:    "eth",
			expected: []string{"ETHUSDT"},
		},
		{
			name:     "empty query returns all USDT pairs",
			query:    "",
			expected: []string{"BTCUSDT", "ETHUSDT", "BTCDOWNUSDT", "WBTCUSDT"},
		},
		{
			name:     "no match",
			query:    "DOGE",
			expected: []string{},
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := NewMarketUsecase(&mockMarketRepository{
				listTickersFn: func(ctx context.Context) ([]entity.Ticker, error) {
					return tickers(), nil
				},
			})

			got, err := uc.Search(context.Background(), tt.query)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, symbolsOf(got))
			for _, s := range got {
				assert.True(t, strings.HasSuffix(s.Symbol, "USDT"))
			}
		})
	}
}

func TestMarketUsecase_Search_TruncatesTo50(t *testing.T) {
	t.Parallel()

	many := make([]entity.Ticker, 0, 120)
	for i := 0; i < 120; i++ {
		many = append(many, entity.Ticker{
			Symbol:      fmt.Sprintf("BTC%03dUSDT", i),
			QuoteVolume: fmt.Sprintf("%d", i),
		})
	}
	uc := NewMarketUsecase(&mockMarketRepository{
		listTickersFn: func(ctx context.Context) ([]entity.Ticker, error) { return many, nil },
	})

	got, err := uc.Search(context.Background(), "BTC")

	require.NoError(t, err)
	require.Len(t, got, 50)
	assert.Equal(t, "BTC119USDT", got[0].Symbol)
	assert.Equal(t, "BTC070USDT", got[49].Symbol)
}

func TestMarketUsecase_Search_Error(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("upstream down")
	uc := NewMarketUsecase(&mockMarketRepository{
		listTickersFn: func(ctx context.Context) ([]entity.Ticker, error) { return nil, expectedErr },
	})

	got, err := uc.Search(context.Background(), "BTC")

	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, got)
}

// TestFilterTickers_DecimalOrdering は売買代金を文字列ではなく数値として比較することを検証します。
func TestFilterTickers_DecimalOrdering(t *testing.T) {
	t.Parallel()

	in := []entity.Ticker{
		{Symbol: "AUSDT", QuoteVolume: "9.5"},
		{Symbol: "BUSDT", QuoteVolume: "10"},
		{Symbol: "CUSDT", QuoteVolume: "not-a-number"},
		{Symbol: "DUSDT", QuoteVolume: "100.000001"},
	}

	got := FilterTickers(in, "", 10)

	assert.Equal(t, []string{"DUSDT", "BUSDT", "AUSDT", "CUSDT"}, symbolsOf(got))
}
