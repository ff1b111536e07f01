// Package usecase は市場データ（ローソク足・ティッカー・銘柄検索）のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"crypto_tracker/internal/api"
	"crypto_tracker/internal/feature/market/domain/entity"
)

const (
	// CandleLimit は1回のリクエストで取得するローソク足の本数です。
	CandleLimit = 100
	// searchQuoteAsset は検索対象とする決済通貨です。
	searchQuoteAsset = "USDT"
)

// MarketRepository は取引所の市場データを取得するリポジトリのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	// GetKlines は指定銘柄・時間足のローソク足を古い順に返します。
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]entity.Candle, error)
	// GetTicker は指定銘柄の24時間ティッカーを返します。
	GetTicker(ctx context.Context, symbol string) (*entity.Ticker, error)
	// ListTickers は全銘柄の24時間ティッカーを返します。
	ListTickers(ctx context.Context) ([]entity.Ticker, error)
}

// MarketUsecase は市場データのユースケースです。
type MarketUsecase struct {
	market MarketRepository
}

// NewMarketUsecase は新しい MarketUsecase を生成します。
func NewMarketUsecase(market MarketRepository) *MarketUsecase {
	return &MarketUsecase{market: market}
}

// GetCandles は指定銘柄のローソク足を取得します。interval が空の場合は1時間足を使用します。
func (u *MarketUsecase) GetCandles(ctx context.Context, symbol, interval string) ([]entity.Candle, error) {
	if interval == "" {
		interval = api.DefaultCandleInterval
	}
	if !api.IsValidInterval(interval) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}
	return u.market.GetKlines(ctx, symbol, interval, CandleLimit)
}

// GetTicker は指定銘柄の24時間ティッカーを取得します。
func (u *MarketUsecase) GetTicker(ctx context.Context, symbol string) (*entity.Ticker, error) {
	return u.market.GetTicker(ctx, symbol)
}

// Search はUSDT建ての銘柄から query を含むものを売買代金の降順で最大50件返します。
// query は大文字に変換して照合し、空の場合はUSDT建ての全銘柄が対象になります。
func (u *MarketUsecase) Search(ctx context.Context, query string) ([]entity.Ticker, error) {
	tickers, err := u.market.ListTickers(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTickers(tickers, query, api.MaxSearchResults), nil
}

// FilterTickers は Search の絞り込み・並べ替え・件数制限を行います。
func FilterTickers(tickers []entity.Ticker, query string, limit int) []entity.Ticker {
	q := strings.ToUpper(query)

	type ranked struct {
		ticker entity.Ticker
		volume decimal.Decimal
	}
	matched := make([]ranked, 0, len(tickers))
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, searchQuoteAsset) {
			continue
		}
		if q != "" && !strings.Contains(t.Symbol, q) {
			continue
		}
		// 数値として解釈できない売買代金は0として扱う
		vol, err := decimal.NewFromString(t.QuoteVolume)
		if err != nil {
			vol = decimal.Zero
		}
		matched = append(matched, ranked{ticker: t, volume: vol})
	}

	slices.SortStableFunc(matched, func(a, b ranked) int {
		return b.volume.Cmp(a.volume)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]entity.Ticker, 0, len(matched))
	for _, m := range matched {
		out = append(out, m.ticker)
	}
	return out
}
