package di

import (
	"gorm.io/gorm"

	favoritesadapters "crypto_tracker/internal/feature/favorites/adapters"
	favoritesusecase "crypto_tracker/internal/feature/favorites/usecase"
)

// NewFavoritesUsecase creates the favorites usecase backed by the given database.
func NewFavoritesUsecase(db *gorm.DB) *favoritesusecase.FavoritesUsecase {
	return favoritesusecase.NewFavoritesUsecase(favoritesadapters.NewFavoriteRepository(db))
}
