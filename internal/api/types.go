// Package api はクライアントとサーバーで共有するHTTPコントラクト（ルート定義とリクエスト/レスポンス型）を定義します。
package api

import "time"

// Favorite はお気に入り銘柄のレスポンス表現です。
type Favorite struct {
	ID        int64     `json:"id" validate:"gt=0"`
	Symbol    string    `json:"symbol" validate:"required"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}

// InsertFavoriteRequest は POST /api/favorites のリクエストボディです。
// id と createdAt はサーバー側で採番されるため含みません。
type InsertFavoriteRequest struct {
	Symbol string `json:"symbol" binding:"required,max=64"`
}

// Candle はローソク足1本分のレスポンス表現です。time はミリ秒単位のUNIX時刻です。
type Candle struct {
	Time   int64   `json:"time" validate:"gt=0"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Ticker は24時間ティッカーのレスポンス表現です。
// 数値は取引所の表現に合わせて文字列のまま返します。
type Ticker struct {
	Symbol             string `json:"symbol" validate:"required"`
	LastPrice          string `json:"lastPrice" validate:"required,numeric"`
	PriceChangePercent string `json:"priceChangePercent" validate:"required,numeric"`
	Volume             string `json:"volume" validate:"required,numeric"`
	QuoteVolume        string `json:"quoteVolume" validate:"required,numeric"`
}

// SearchResult は銘柄検索結果の1件です。
type SearchResult struct {
	Symbol             string `json:"symbol" validate:"required"`
	LastPrice          string `json:"lastPrice" validate:"required,numeric"`
	PriceChangePercent string `json:"priceChangePercent" validate:"required,numeric"`
}

// CandlesParams は GET /api/market/candles/:symbol のクエリパラメータです。
type CandlesParams struct {
	Interval *string `form:"interval" json:"interval,omitempty"`
}

// SearchParams は GET /api/market/search のクエリパラメータです。
type SearchParams struct {
	Query *string `form:"query" json:"query,omitempty"`
}

// ValidationError は400レスポンスのボディです。最初のバリデーションエラーのみを保持します。
type ValidationError struct {
	Message string `json:"message" validate:"required"`
	Field   string `json:"field,omitempty"`
}

// MessageResponse は404/500レスポンスのボディです。
type MessageResponse struct {
	Message string `json:"message" validate:"required"`
}

// NoContent は本文を持たないレスポンス（204）を表します。
type NoContent struct{}
