package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crypto_tracker/internal/api"
	favoritesadapters "crypto_tracker/internal/feature/favorites/adapters"
	favoriteshandler "crypto_tracker/internal/feature/favorites/transport/handler"
	favoritesusecase "crypto_tracker/internal/feature/favorites/usecase"
	"crypto_tracker/internal/feature/market/adapters/binance"
	markethandler "crypto_tracker/internal/feature/market/transport/handler"
	marketusecase "crypto_tracker/internal/feature/market/usecase"
	platformhandler "crypto_tracker/internal/platform/http/handler"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeExchange はBinance APIの最小限の応答を返すテストサーバーです。
func fakeExchange(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/klines", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[1736899200000,"97000","97500","96800","97250","12.5",1736902799999,"0",1,"0","0","0"]]`))
	})
	mux.HandleFunc("/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "":
			_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","lastPrice":"97000","priceChangePercent":"1.2","volume":"10","quoteVolume":"970000"}]`))
		case "BTCUSDT":
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"97000","priceChangePercent":"1.2","volume":"10","quoteVolume":"970000"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&favoritesadapters.FavoriteModel{}))

	exchange := fakeExchange(t)
	market := binance.NewBinanceMarket(binance.Config{BaseURL: exchange.URL, Timeout: time.Second}, exchange.Client(), nil)

	return NewRouter(Handlers{
		Favorites: favoriteshandler.NewFavoritesHandler(
			favoritesusecase.NewFavoritesUsecase(favoritesadapters.NewFavoriteRepository(db))),
		Market: markethandler.NewMarketHandler(marketusecase.NewMarketUsecase(market)),
		Health: platformhandler.NewHealthHandler(sqlDB),
	}, opts)
}

func do(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

// TestRouter_FavoritesLifecycle は作成・一覧・削除の一連の流れをルート定義の検証付きで確認します。
func TestRouter_FavoritesLifecycle(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Options{})

	w := do(r, http.MethodPost, api.FavoritesCreate.URL(nil), `{"symbol":"XRPUSDT"}`)
	created, err := api.DecodeResponse[api.Favorite](api.FavoritesCreate, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code)

	// 同じsymbolの再作成は既存レコードを返す
	w = do(r, http.MethodPost, api.FavoritesCreate.URL(nil), `{"symbol":"XRPUSDT"}`)
	again, err := api.DecodeResponse[api.Favorite](api.FavoritesCreate, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	w = do(r, http.MethodGet, api.FavoritesList.URL(nil), "")
	list, err := api.DecodeResponse[[]api.Favorite](api.FavoritesList, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "XRPUSDT", list[0].Symbol)

	deleteURL := api.FavoritesDelete.URL(map[string]string{"symbol": "XRPUSDT"})
	w = do(r, http.MethodDelete, deleteURL, "")
	_, err = api.DecodeResponse[api.NoContent](api.FavoritesDelete, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, deleteURL, "")
	msg, err := api.DecodeResponse[api.MessageResponse](api.FavoritesDelete, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Favorite not found", msg.Message)

	w = do(r, http.MethodGet, api.FavoritesList.URL(nil), "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

// TestRouter_DeleteEscapedSymbol は "%" や "/" を含む symbol が1回だけデコードされ、
// 作成したレコードそのものが削除されることを検証します。
func TestRouter_DeleteEscapedSymbol(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Options{})
	for _, s := range []string{"AA", "A%41", "50%OFF", "BTC/USDT"} {
		w := do(r, http.MethodPost, api.FavoritesCreate.URL(nil), `{"symbol":"`+s+`"}`)
		require.Equal(t, http.StatusCreated, w.Code, s)
	}

	for _, s := range []string{"A%41", "50%OFF", "BTC/USDT"} {
		w := do(r, http.MethodDelete, api.FavoritesDelete.URL(map[string]string{"symbol": s}), "")
		assert.Equal(t, http.StatusNoContent, w.Code, s)
	}

	w := do(r, http.MethodGet, api.FavoritesList.URL(nil), "")
	list, err := api.DecodeResponse[[]api.Favorite](api.FavoritesList, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "AA", list[0].Symbol)
}

func TestRouter_CreateValidationError(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Options{})

	w := do(r, http.MethodPost, api.FavoritesCreate.URL(nil), `{}`)

	ve, err := api.DecodeResponse[api.ValidationError](api.FavoritesCreate, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "symbol", ve.Field)
	assert.NotEmpty(t, ve.Message)
}

func TestRouter_MarketRoutes(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Options{})

	w := do(r, http.MethodGet, api.MarketCandles.URL(map[string]string{"symbol": "BTCUSDT"})+"?interval=4h", "")
	candles, err := api.DecodeResponse[[]api.Candle](api.MarketCandles, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, int64(1736899200000), candles[0].Time)

	w = do(r, http.MethodGet, api.MarketTicker.URL(map[string]string{"symbol": "BTCUSDT"}), "")
	ticker, err := api.DecodeResponse[api.Ticker](api.MarketTicker, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "97000", ticker.LastPrice)

	w = do(r, http.MethodGet, api.MarketTicker.URL(map[string]string{"symbol": "NOPE"}), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, api.MarketSearch.URL(nil)+"?query=btc", "")
	results, err := api.DecodeResponse[[]api.SearchResult](api.MarketSearch, w.Code, w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "BTCUSDT", results[0].Symbol)
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Options{})

	w := do(r, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		origins       []string
		requestOrigin string
		expectedAllow string
	}{
		{"allowed origin", []string{"http://localhost:5173"}, "http://localhost:5173", "http://localhost:5173"},
		{"wildcard", []string{"*"}, "https://anywhere.example.com", "*"},
		{"cors disabled", nil, "http://localhost:5173", ""},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(t, Options{AllowedOrigins: tt.origins})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
			req.Header.Set("Origin", tt.requestOrigin)

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRouter_PanicRecovery(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Options{})
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}

func TestNewRouter_RegistersEveryRoute(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, Options{})

	registered := map[string]bool{}
	for _, info := range r.Routes() {
		registered[info.Method+" "+info.Path] = true
	}
	for _, rt := range api.Routes {
		assert.True(t, registered[rt.Method+" "+rt.Path], "route %s not registered", rt.Name)
	}
}
