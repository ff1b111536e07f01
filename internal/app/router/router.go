package router

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"crypto_tracker/internal/api"
	favoriteshandler "crypto_tracker/internal/feature/favorites/transport/handler"
	markethandler "crypto_tracker/internal/feature/market/transport/handler"
	platformhandler "crypto_tracker/internal/platform/http/handler"
)

// Handlers はルーターに登録するハンドラーの集合です。
type Handlers struct {
	Favorites *favoriteshandler.FavoritesHandler
	Market    *markethandler.MarketHandler
	Health    *platformhandler.HealthHandler
}

// Options はルーターの動作設定です。
type Options struct {
	// AllowedOrigins が空の場合はCORSヘッダーを付与しません。
	AllowedOrigins []string
}

// NewRouter はapi.Routesの定義に従ってハンドラーを登録したginエンジンを返します。
// 定義に対応するハンドラーがない場合はpanicします。
func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	// "%2F" を含むパスもルートに一致させ、パラメータは1回だけデコードする
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Logger(), recovery())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(opts.AllowedOrigins))
	}

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)

	byName := map[string]gin.HandlerFunc{
		api.FavoritesList.Name:   h.Favorites.List,
		api.FavoritesCreate.Name: h.Favorites.Create,
		api.FavoritesDelete.Name: h.Favorites.Delete,
		api.MarketCandles.Name:   h.Market.GetCandles,
		api.MarketTicker.Name:    h.Market.GetTicker,
		api.MarketSearch.Name:    h.Market.Search,
	}
	for _, rt := range api.Routes {
		fn, ok := byName[rt.Name]
		if !ok {
			panic(fmt.Sprintf("router: no handler for route %q", rt.Name))
		}
		r.Handle(rt.Method, rt.Path, fn)
	}

	return r
}
