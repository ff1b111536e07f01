// Package handler はmarketフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"crypto_tracker/internal/api"
	"crypto_tracker/internal/feature/market/domain/entity"
	"crypto_tracker/internal/feature/market/usecase"
)

// MarketUsecase は市場データ取得のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketUsecase interface {
	GetCandles(ctx context.Context, symbol, interval string) ([]entity.Candle, error)
	GetTicker(ctx context.Context, symbol string) (*entity.Ticker, error)
	Search(ctx context.Context, query string) ([]entity.Ticker, error)
}

// MarketHandler は市場データのHTTPリクエストを処理します。
type MarketHandler struct {
	uc MarketUsecase
}

// NewMarketHandler は新しい MarketHandler を作成します。
func NewMarketHandler(uc MarketUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

var errEmptySymbol = errors.New("symbol is empty")

// bindSymbol はパスパラメータ symbol を返します。
// 値はルーターで1回だけデコードされるため、ここではアンエスケープしません。
func bindSymbol(c *gin.Context) (string, error) {
	symbol := c.Param("symbol")
	if symbol == "" {
		return "", errEmptySymbol
	}
	return symbol, nil
}

func invalidInterval() api.ValidationError {
	return api.ValidationError{
		Message: fmt.Sprintf("interval must be one of [%s]", strings.Join(api.CandleIntervals, " ")),
		Field:   "interval",
	}
}

// GetCandles は銘柄のローソク足を返します。interval 未指定時は1時間足です。
//
// エンドポイント: GET /api/market/candles/:symbol?interval=1h
func (h *MarketHandler) GetCandles(c *gin.Context) {
	symbol, err := bindSymbol(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ValidationError{Message: "symbol is required", Field: "symbol"})
		return
	}

	var params api.CandlesParams
	if err := runtime.BindQueryParameter("form", true, false, "interval", c.Request.URL.Query(), &params.Interval); err != nil {
		c.JSON(http.StatusBadRequest, invalidInterval())
		return
	}
	interval := ""
	if params.Interval != nil {
		interval = *params.Interval
	}

	candles, err := h.uc.GetCandles(c.Request.Context(), symbol, interval)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInterval) {
			c.JSON(http.StatusBadRequest, invalidInterval())
			return
		}
		slog.Error("failed to fetch candles", "error", err, "symbol", symbol, "interval", interval)
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "Failed to fetch candles"})
		return
	}

	out := make([]api.Candle, 0, len(candles))
	for _, x := range candles {
		out = append(out, api.Candle{
			Time:   x.Time.UnixMilli(),
			Open:   x.Open,
			High:   x.High,
			Low:    x.Low,
			Close:  x.Close,
			Volume: x.Volume,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetTicker は銘柄の24時間ティッカーを返します。取引所が銘柄を認識しない場合は404です。
//
// エンドポイント: GET /api/market/ticker/:symbol
func (h *MarketHandler) GetTicker(c *gin.Context) {
	symbol, err := bindSymbol(c)
	if err != nil {
		c.JSON(http.StatusNotFound, api.MessageResponse{Message: "Ticker not found"})
		return
	}

	t, err := h.uc.GetTicker(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, usecase.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, api.MessageResponse{Message: "Ticker not found"})
			return
		}
		slog.Error("failed to fetch ticker", "error", err, "symbol", symbol)
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "Failed to fetch ticker"})
		return
	}

	c.JSON(http.StatusOK, api.Ticker{
		Symbol:             t.Symbol,
		LastPrice:          t.LastPrice,
		PriceChangePercent: t.PriceChangePercent,
		Volume:             t.Volume,
		QuoteVolume:        t.QuoteVolume,
	})
}

// Search はUSDT建て銘柄を query で絞り込み、売買代金の降順で最大50件返します。
//
// エンドポイント: GET /api/market/search?query=BTC
func (h *MarketHandler) Search(c *gin.Context) {
	var params api.SearchParams
	// 不正なクエリは未指定として扱う
	_ = runtime.BindQueryParameter("form", true, false, "query", c.Request.URL.Query(), &params.Query)
	query := ""
	if params.Query != nil {
		query = *params.Query
	}

	tickers, err := h.uc.Search(c.Request.Context(), query)
	if err != nil {
		slog.Error("failed to search", "error", err, "query", query)
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "Failed to search"})
		return
	}

	out := make([]api.SearchResult, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, api.SearchResult{
			Symbol:             t.Symbol,
			LastPrice:          t.LastPrice,
			PriceChangePercent: t.PriceChangePercent,
		})
	}
	c.JSON(http.StatusOK, out)
}
