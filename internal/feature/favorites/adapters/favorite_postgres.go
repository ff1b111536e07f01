// Package adapters はfavoritesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crypto_tracker/internal/feature/favorites/domain/entity"
	"crypto_tracker/internal/feature/favorites/usecase"
)

// addAttempts は挿入と既存行の取得の間に行が削除された場合の再試行回数の上限です。
const addAttempts = 2

// favoritePostgres はFavoriteRepositoryインターフェースのGORM実装です。
type favoritePostgres struct {
	db *gorm.DB
}

// favoritePostgresがFavoriteRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.FavoriteRepository = (*favoritePostgres)(nil)

// NewFavoriteRepository は指定されたDB接続でfavoritePostgresの新しいインスタンスを生成します。
func NewFavoriteRepository(db *gorm.DB) *favoritePostgres {
	return &favoritePostgres{db: db}
}

// FavoriteModel は favorites テーブルの行です。
type FavoriteModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Symbol    string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime"`
}

func (FavoriteModel) TableName() string {
	return "favorites"
}

func (m FavoriteModel) toEntity() entity.Favorite {
	return entity.Favorite{
		ID:        m.ID,
		Symbol:    m.Symbol,
		CreatedAt: m.CreatedAt,
	}
}

// List はID順（挿入順）にすべてのお気に入りを返します。
func (r *favoritePostgres) List(ctx context.Context) ([]entity.Favorite, error) {
	var rows []FavoriteModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Favorite, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

// Add は INSERT ... ON CONFLICT (symbol) DO NOTHING でお気に入りを追加します。
// 競合により挿入されなかった場合は既存の行を取得して返します。
// 同じ symbol の並行した追加は一意制約によりどちらも同じ行に解決されます。
func (r *favoritePostgres) Add(ctx context.Context, in entity.InsertFavorite) (*entity.Favorite, error) {
	for attempt := 0; attempt < addAttempts; attempt++ {
		m := FavoriteModel{Symbol: in.Symbol}
		res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoNothing: true,
		}).Create(&m)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			e := m.toEntity()
			return &e, nil
		}

		var existing FavoriteModel
		err := r.db.WithContext(ctx).Where("symbol = ?", in.Symbol).First(&existing).Error
		if err == nil {
			e := existing.toEntity()
			return &e, nil
		}
		// 挿入と取得の間に削除された場合のみ再試行する
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("add favorite %q: row disappeared during insert", in.Symbol)
}

// Remove は symbol に一致する行を物理削除し、削除したかどうかを返します。
func (r *favoritePostgres) Remove(ctx context.Context, symbol string) (bool, error) {
	res := r.db.WithContext(ctx).Where("symbol = ?", symbol).Delete(&FavoriteModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
