// Package config はサーバープロセス全体の設定を環境変数から読み込みます。
// 各コンポーネント固有の設定（DB, Redis, Binance）はそれぞれのパッケージが読み込みます。
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config はHTTPサーバーと起動時処理の設定です。
type Config struct {
	Port           string
	AllowedOrigins []string
	SeedOnStart    bool
	RunMigrations  bool
}

// Load は環境変数から設定を読み込みます。
//
//	PORT                  待ち受けポート（既定 8080）
//	CORS_ALLOWED_ORIGINS  カンマ区切りの許可オリジン。"*" で全許可
//	SEED_ON_START         起動時に初期お気に入りを投入するか（既定 true）
//	RUN_MIGRATIONS        起動時にマイグレーションを実行するか（既定 true）。
//	                      無効にする場合は cmd/seed などで事前にテーブルを作成しておくこと
func Load() Config {
	cfg := Config{
		Port:          os.Getenv("PORT"),
		SeedOnStart:   boolEnv("SEED_ON_START", true),
		RunMigrations: boolEnv("RUN_MIGRATIONS", true),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg
}

// Addr はgin.Runに渡す待ち受けアドレスです。
func (c Config) Addr() string {
	return ":" + c.Port
}

func boolEnv(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
