package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"crypto_tracker/internal/app/config"
	"crypto_tracker/internal/app/di"
	"crypto_tracker/internal/app/router"
	favoriteshandler "crypto_tracker/internal/feature/favorites/transport/handler"
	"crypto_tracker/internal/feature/market/adapters/binance"
	markethandler "crypto_tracker/internal/feature/market/transport/handler"
	"crypto_tracker/internal/platform/db"
	platformhandler "crypto_tracker/internal/platform/http/handler"
	"crypto_tracker/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	cfg := config.Load()

	// db
	gdb, err := db.OpenDB(db.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	if cfg.RunMigrations {
		if err := db.Migrate(gdb); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := redis.NewRedisClient(context.Background(), redis.LoadConfig()); err != nil {
		if !errors.Is(err, redis.ErrNotConfigured) {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		}
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Usecase
	favoritesUC := di.NewFavoritesUsecase(gdb)
	if cfg.SeedOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := favoritesUC.Seed(ctx)
		cancel()
		if err != nil {
			slog.Error("failed to seed favorites", "error", err)
			os.Exit(1)
		}
	}
	marketUC := di.NewMarketUsecase(binance.LoadConfig(), rdb)

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Favorites: favoriteshandler.NewFavoritesHandler(favoritesUC),
		Market:    markethandler.NewMarketHandler(marketUC),
		Health:    platformhandler.NewHealthHandler(sqlDB),
	}, router.Options{AllowedOrigins: cfg.AllowedOrigins})

	slog.Info("server starting", "addr", cfg.Addr(), "cache", rdb != nil)
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
