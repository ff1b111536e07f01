// Package usecase はお気に入り銘柄（ウォッチリスト）のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"crypto_tracker/internal/feature/favorites/domain/entity"
)

// DefaultSymbols は空のストアに投入される初期銘柄です。
var DefaultSymbols = []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}

// FavoriteRepository はお気に入りの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type FavoriteRepository interface {
	// List はすべてのお気に入りを返します。存在しない場合は空スライスを返します。
	List(ctx context.Context) ([]entity.Favorite, error)

	// Add はお気に入りを追加します。同じ symbol が既に存在する場合は
	// 新しい行を作らず、既存のレコードを返します。
	Add(ctx context.Context, in entity.InsertFavorite) (*entity.Favorite, error)

	// Remove は symbol に一致するお気に入りを削除し、実際に削除したかどうかを返します。
	Remove(ctx context.Context, symbol string) (bool, error)
}

// FavoritesUsecase はお気に入り操作のユースケースです。
type FavoritesUsecase struct {
	repo FavoriteRepository
}

// NewFavoritesUsecase は新しい FavoritesUsecase を生成します。
func NewFavoritesUsecase(repo FavoriteRepository) *FavoritesUsecase {
	return &FavoritesUsecase{repo: repo}
}

// List はすべてのお気に入りを返します。
func (u *FavoritesUsecase) List(ctx context.Context) ([]entity.Favorite, error) {
	return u.repo.List(ctx)
}

// Add はお気に入りを追加します（symbol 単位で冪等）。
func (u *FavoritesUsecase) Add(ctx context.Context, in entity.InsertFavorite) (*entity.Favorite, error) {
	return u.repo.Add(ctx, in)
}

// Remove はお気に入りを削除します。該当する行がない場合は ErrFavoriteNotFound を返します。
func (u *FavoritesUsecase) Remove(ctx context.Context, symbol string) error {
	deleted, err := u.repo.Remove(ctx, symbol)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFavoriteNotFound
	}
	return nil
}

// Seed はストアが空の場合のみ DefaultSymbols を投入します。
// 1件でもお気に入りが存在すれば何もしないため、起動のたびに呼び出して構いません。
func (u *FavoritesUsecase) Seed(ctx context.Context) error {
	existing, err := u.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list favorites: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("seed skipped", "favorites", len(existing))
		return nil
	}

	for _, s := range DefaultSymbols {
		if _, err := u.repo.Add(ctx, entity.InsertFavorite{Symbol: s}); err != nil {
			return fmt.Errorf("seed %s: %w", s, err)
		}
	}
	slog.Info("seeded default favorites", "symbols", DefaultSymbols)
	return nil
}
