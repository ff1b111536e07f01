package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crypto_tracker/internal/feature/market/adapters/binance/dto"
	"crypto_tracker/internal/feature/market/domain/entity"
	"crypto_tracker/internal/feature/market/usecase"
	"crypto_tracker/internal/shared/ratelimiter"
)

// codeInvalidSymbol はBinanceが未知の銘柄に対して返すエラーコードです。
const codeInvalidSymbol = -1121

// エラーボディの読み取り上限
const maxErrorBody = 4 << 10

// BinanceMarket はBinance REST APIから市場データを取得するMarketRepository実装です。
type BinanceMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// BinanceMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*BinanceMarket)(nil)

// NewBinanceMarket は指定された設定・HTTPクライアント・レートリミッターでBinanceMarketを生成します。
// limiter が nil の場合はレート制限を行いません。
func NewBinanceMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *BinanceMarket {
	return &BinanceMarket{cfg: cfg, client: client, limiter: limiter}
}

// GetKlines は /klines からローソク足を取得し、古い順のdomain.Candleとして返します。
func (b *BinanceMarket) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]entity.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))

	var rows []dto.Kline
	if err := b.get(ctx, "/klines", q, &rows); err != nil {
		return nil, err
	}

	candles := make([]entity.Candle, 0, len(rows))
	for _, k := range rows {
		candles = append(candles, entity.Candle{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   k.Open.InexactFloat64(),
			High:   k.High.InexactFloat64(),
			Low:    k.Low.InexactFloat64(),
			Close:  k.Close.InexactFloat64(),
			Volume: k.Volume.InexactFloat64(),
		})
	}
	return candles, nil
}

// GetTicker は /ticker/24hr から1銘柄のティッカーを取得します。
func (b *BinanceMarket) GetTicker(ctx context.Context, symbol string) (*entity.Ticker, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.Ticker24hr
	if err := b.get(ctx, "/ticker/24hr", q, &body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	t := toTicker(body)
	return &t, nil
}

// ListTickers は /ticker/24hr から全銘柄のティッカーを取得します。
func (b *BinanceMarket) ListTickers(ctx context.Context) ([]entity.Ticker, error) {
	var body []dto.Ticker24hr
	if err := b.get(ctx, "/ticker/24hr", nil, &body); err != nil {
		return nil, err
	}

	out := make([]entity.Ticker, 0, len(body))
	for _, t := range body {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, toTicker(t))
	}
	return out, nil
}

func toTicker(t dto.Ticker24hr) entity.Ticker {
	return entity.Ticker{
		Symbol:             t.Symbol,
		LastPrice:          t.LastPrice,
		PriceChangePercent: t.PriceChangePercent,
		Volume:             t.Volume,
		QuoteVolume:        t.QuoteVolume,
	}
}

// get はGETリクエストを送信し、レスポンスを out にデコードします。
func (b *BinanceMarket) get(ctx context.Context, path string, q url.Values, out any) error {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("binance rate limit: %w", err)
		}
	}

	u := b.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	// リクエストを実行
	res, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return decodeError(res)
	}

	// JSONレスポンスをDTOにデコード
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("binance %s: decode: %w", path, err)
	}
	return nil
}

// decodeError はエラーレスポンスを解釈します。未知の銘柄は usecase.ErrSymbolNotFound になります。
func decodeError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

	var e dto.ErrorResponse
	if err := json.Unmarshal(b, &e); err == nil && e.Code != 0 {
		if e.Code == codeInvalidSymbol {
			return fmt.Errorf("binance: %w: %s", usecase.ErrSymbolNotFound, e.Msg)
		}
		return fmt.Errorf("binance http %d: code %d: %s", res.StatusCode, e.Code, e.Msg)
	}
	return fmt.Errorf("binance http %d", res.StatusCode)
}
