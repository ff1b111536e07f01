package api

import (
	"net/http"
	"net/url"
	"strings"
)

// Route は1つの論理オペレーションに対するHTTPメソッド、パステンプレート、
// ステータスコードごとのレスポンス型を束ねたものです。
type Route struct {
	Name   string
	Method string
	// Path は ":name" 形式のプレースホルダーを含むパステンプレートです（ginのルーティング構文と同じ）。
	Path string
	// Input はリクエストボディまたはクエリの型のゼロ値です。入力がないルートでは nil です。
	Input any
	// Responses はステータスコードごとのレスポンス型のゼロ値です。
	Responses map[int]any
}

// 各オペレーションのルート定義です。
var (
	FavoritesList = Route{
		Name:   "favorites.list",
		Method: http.MethodGet,
		Path:   "/api/favorites",
		Responses: map[int]any{
			http.StatusOK:                  []Favorite{},
			http.StatusInternalServerError: MessageResponse{},
		},
	}

	FavoritesCreate = Route{
		Name:   "favorites.create",
		Method: http.MethodPost,
		Path:   "/api/favorites",
		Input:  InsertFavoriteRequest{},
		Responses: map[int]any{
			http.StatusCreated:             Favorite{},
			http.StatusBadRequest:          ValidationError{},
			http.StatusInternalServerError: MessageResponse{},
		},
	}

	FavoritesDelete = Route{
		Name:   "favorites.delete",
		Method: http.MethodDelete,
		Path:   "/api/favorites/:symbol",
		Responses: map[int]any{
			http.StatusNoContent:           NoContent{},
			http.StatusNotFound:            MessageResponse{},
			http.StatusInternalServerError: MessageResponse{},
		},
	}

	MarketCandles = Route{
		Name:   "market.candles",
		Method: http.MethodGet,
		Path:   "/api/market/candles/:symbol",
		Input:  CandlesParams{},
		Responses: map[int]any{
			http.StatusOK:                  []Candle{},
			http.StatusBadRequest:          ValidationError{},
			http.StatusInternalServerError: MessageResponse{},
		},
	}

	MarketTicker = Route{
		Name:   "market.ticker",
		Method: http.MethodGet,
		Path:   "/api/market/ticker/:symbol",
		Responses: map[int]any{
			http.StatusOK:                  Ticker{},
			http.StatusNotFound:            MessageResponse{},
			http.StatusInternalServerError: MessageResponse{},
		},
	}

	MarketSearch = Route{
		Name:   "market.search",
		Method: http.MethodGet,
		Path:   "/api/market/search",
		Input:  SearchParams{},
		Responses: map[int]any{
			http.StatusOK:                  []SearchResult{},
			http.StatusInternalServerError: MessageResponse{},
		},
	}
)

// Routes はすべてのルート定義の一覧です。
var Routes = []Route{
	FavoritesList,
	FavoritesCreate,
	FavoritesDelete,
	MarketCandles,
	MarketTicker,
	MarketSearch,
}

// CandleIntervals はローソク足で指定可能な時間足です。
var CandleIntervals = []string{"1m", "5m", "15m", "1h", "4h", "1d", "1w"}

// DefaultCandleInterval は interval 未指定時の時間足です。
const DefaultCandleInterval = "1h"

// MaxSearchResults は検索結果の最大件数です。
const MaxSearchResults = 50

// BuildURL はパステンプレートの ":name" を params の値で置き換えます。
// 値は url.PathEscape でエンコードされます。テンプレートにないキーは無視されます。
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if v, ok := params[seg[1:]]; ok {
			segments[i] = url.PathEscape(v)
		}
	}
	return strings.Join(segments, "/")
}

// URL はルートのパステンプレートに params を埋め込んだパスを返します。
func (r Route) URL(params map[string]string) string {
	return BuildURL(r.Path, params)
}

// Declares はルートが指定ステータスのレスポンスを定義しているかを返します。
func (r Route) Declares(status int) bool {
	_, ok := r.Responses[status]
	return ok
}
