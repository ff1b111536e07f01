// Package client はapi.Routesに従ってサーバーを呼び出す型付きHTTPクライアントです。
// すべてのレスポンスは api.DecodeResponse でルート定義に照らして検証されます。
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"crypto_tracker/internal/api"
)

const (
	// DefaultBaseURL はTRACKER_BASE_URL未設定時の接続先です。
	DefaultBaseURL = "http://localhost:8080"
	defaultTimeout = 10 * time.Second
	// SearchCacheTTL は検索結果をキャッシュする期間です。
	SearchCacheTTL = 5 * time.Minute
	// MinSearchQueryLen 未満のクエリはリクエストせず空の結果を返します。
	MinSearchQueryLen = 2
)

// ErrEmptySymbol は symbol が空のまま呼び出されたことを示します。
var ErrEmptySymbol = errors.New("client: symbol is empty")

// APIError はサーバーが4xx/5xxを返したことを表します。
type APIError struct {
	Route   string
	Status  int
	Message string
	Field   string // 400の場合のみ
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %d %s (field %s)", e.Route, e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %d %s", e.Route, e.Status, e.Message)
}

type searchEntry struct {
	results []api.SearchResult
	expires time.Time
}

// Client はcrypto_trackerサーバーのAPIクライアントです。複数のgoroutineから利用できます。
type Client struct {
	http *resty.Client
	now  func() time.Time

	mu          sync.Mutex
	searchCache map[string]searchEntry
}

// Option はClientの設定を変更します。
type Option func(*Client)

// WithHTTPClient は内部で使用する *http.Client を差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		base := c.http.BaseURL
		c.http = resty.NewWithClient(hc).SetBaseURL(base)
	}
}

// WithTimeout はリクエストごとのタイムアウトを設定します。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// New は baseURL（例: "http://localhost:8080"）に接続するClientを返します。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:        resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		now:         time.Now,
		searchCache: map[string]searchEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetHeader("Accept", "application/json")
	if c.http.GetClient().Timeout == 0 {
		c.http.SetTimeout(defaultTimeout)
	}
	return c
}

// BaseURLFromEnv はTRACKER_BASE_URLを返します。未設定時は DefaultBaseURL です。
func BaseURLFromEnv() string {
	if v := os.Getenv("TRACKER_BASE_URL"); v != "" {
		return v
	}
	return DefaultBaseURL
}

// ListFavorites はお気に入りの一覧を取得します。
func (c *Client) ListFavorites(ctx context.Context) ([]api.Favorite, error) {
	return call[[]api.Favorite](ctx, c, api.FavoritesList, nil, nil, nil)
}

// AddFavorite はお気に入りを追加します。既に存在する場合は既存のレコードが返ります。
func (c *Client) AddFavorite(ctx context.Context, symbol string) (api.Favorite, error) {
	return call[api.Favorite](ctx, c, api.FavoritesCreate, nil, nil, api.InsertFavoriteRequest{Symbol: symbol})
}

// RemoveFavorite はお気に入りを削除します。存在しない場合は404の *APIError を返します。
func (c *Client) RemoveFavorite(ctx context.Context, symbol string) error {
	if symbol == "" {
		return ErrEmptySymbol
	}
	_, err := call[api.NoContent](ctx, c, api.FavoritesDelete, map[string]string{"symbol": symbol}, nil, nil)
	return err
}

// Candles はローソク足を取得します。interval が空の場合はサーバー既定の時間足になります。
func (c *Client) Candles(ctx context.Context, symbol, interval string) ([]api.Candle, error) {
	if symbol == "" {
		return nil, ErrEmptySymbol
	}
	var q url.Values
	if interval != "" {
		q = url.Values{"interval": {interval}}
	}
	return call[[]api.Candle](ctx, c, api.MarketCandles, map[string]string{"symbol": symbol}, q, nil)
}

// Ticker は24時間ティッカーを取得します。
func (c *Client) Ticker(ctx context.Context, symbol string) (api.Ticker, error) {
	if symbol == "" {
		return api.Ticker{}, ErrEmptySymbol
	}
	return call[api.Ticker](ctx, c, api.MarketTicker, map[string]string{"symbol": symbol}, nil, nil)
}

// Search は銘柄を検索します。
// MinSearchQueryLen 文字未満のクエリはリクエストせず空の結果を返し、
// 成功した結果はクエリごとに SearchCacheTTL の間キャッシュします。
func (c *Client) Search(ctx context.Context, query string) ([]api.SearchResult, error) {
	if len(query) < MinSearchQueryLen {
		return []api.SearchResult{}, nil
	}

	now := c.now()
	c.mu.Lock()
	if e, ok := c.searchCache[query]; ok && now.Before(e.expires) {
		c.mu.Unlock()
		return e.results, nil
	}
	c.mu.Unlock()

	results, err := call[[]api.SearchResult](ctx, c, api.MarketSearch, nil, url.Values{"query": {query}}, nil)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for k, e := range c.searchCache {
		if !now.Before(e.expires) {
			delete(c.searchCache, k)
		}
	}
	c.searchCache[query] = searchEntry{results: results, expires: now.Add(SearchCacheTTL)}
	c.mu.Unlock()
	return results, nil
}

// call はルートに対してリクエストを送信し、レスポンスをルート定義に照らして検証します。
func call[T any](ctx context.Context, c *Client, route api.Route, params map[string]string, query url.Values, body any) (T, error) {
	var zero T

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	res, err := req.Execute(route.Method, route.URL(params))
	if err != nil {
		return zero, fmt.Errorf("%s: %w", route.Name, err)
	}

	status := res.StatusCode()
	if status >= http.StatusBadRequest {
		return zero, decodeError(route, status, res.Body())
	}
	out, err := api.DecodeResponse[T](route, status, res.Body())
	if err != nil {
		return zero, fmt.Errorf("%s: %w", route.Name, err)
	}
	return out, nil
}

// decodeError はエラーレスポンスを *APIError に変換します。
// ルートが宣言していないステータスや形式の場合はステータス文言を使用します。
func decodeError(route api.Route, status int, body []byte) error {
	e := &APIError{Route: route.Name, Status: status, Message: http.StatusText(status)}
	switch route.Responses[status].(type) {
	case api.ValidationError:
		if ve, err := api.DecodeResponse[api.ValidationError](route, status, body); err == nil {
			e.Message, e.Field = ve.Message, ve.Field
		}
	case api.MessageResponse:
		if m, err := api.DecodeResponse[api.MessageResponse](route, status, body); err == nil {
			e.Message = m.Message
		}
	}
	return e
}
