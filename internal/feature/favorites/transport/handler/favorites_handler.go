// Package handler はfavoritesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto_tracker/internal/api"
	"crypto_tracker/internal/feature/favorites/domain/entity"
	"crypto_tracker/internal/feature/favorites/usecase"
)

// FavoritesUsecase はお気に入り操作のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type FavoritesUsecase interface {
	List(ctx context.Context) ([]entity.Favorite, error)
	Add(ctx context.Context, in entity.InsertFavorite) (*entity.Favorite, error)
	Remove(ctx context.Context, symbol string) error
}

// FavoritesHandler はお気に入りのHTTPリクエストを処理します。
type FavoritesHandler struct {
	uc FavoritesUsecase
}

// NewFavoritesHandler は新しい FavoritesHandler を作成します。
func NewFavoritesHandler(uc FavoritesUsecase) *FavoritesHandler {
	return &FavoritesHandler{uc: uc}
}

func toResponse(f entity.Favorite) api.Favorite {
	return api.Favorite{ID: f.ID, Symbol: f.Symbol, CreatedAt: f.CreatedAt}
}

// List はお気に入りの一覧を返します。
//
// エンドポイント: GET /api/favorites
func (h *FavoritesHandler) List(c *gin.Context) {
	favs, err := h.uc.List(c.Request.Context())
	if err != nil {
		slog.Error("failed to list favorites", "error", err)
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "Failed to list favorites"})
		return
	}
	out := make([]api.Favorite, 0, len(favs))
	for _, f := range favs {
		out = append(out, toResponse(f))
	}
	c.JSON(http.StatusOK, out)
}

// Create はお気に入りを追加します。
// - ボディのバリデーションエラー時は最初のエラーを {message, field} で400返却
// - 既存の symbol の場合も既存レコードを201で返却（symbol 単位で冪等）
//
// エンドポイント: POST /api/favorites
func (h *FavoritesHandler) Create(c *gin.Context) {
	var req api.InsertFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ve := api.NewValidationError(err, req)
		slog.Warn("favorite validation failed", "error", err, "field", ve.Field, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, ve)
		return
	}

	fav, err := h.uc.Add(c.Request.Context(), entity.InsertFavorite{Symbol: req.Symbol})
	if err != nil {
		slog.Error("failed to add favorite", "error", err, "symbol", req.Symbol)
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "Failed to add favorite"})
		return
	}
	c.JSON(http.StatusCreated, toResponse(*fav))
}

// Delete はお気に入りを削除します。存在しない symbol の場合は404を返します。
//
// エンドポイント: DELETE /api/favorites/:symbol
func (h *FavoritesHandler) Delete(c *gin.Context) {
	// ルーターでデコード済みのため、ここで再度アンエスケープしない
	symbol := c.Param("symbol")
	if symbol == "" {
		c.JSON(http.StatusNotFound, api.MessageResponse{Message: "Favorite not found"})
		return
	}

	if err := h.uc.Remove(c.Request.Context(), symbol); err != nil {
		if errors.Is(err, usecase.ErrFavoriteNotFound) {
			c.JSON(http.StatusNotFound, api.MessageResponse{Message: "Favorite not found"})
			return
		}
		slog.Error("failed to remove favorite", "error", err, "symbol", symbol)
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "Failed to remove favorite"})
		return
	}
	c.Status(http.StatusNoContent)
}
