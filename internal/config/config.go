package config

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Env, Port string }
type DBCfg struct{ DSN string }
type RedisCfg struct{ Addr string }

type Cfg struct {
	App   AppCfg
	DB    DBCfg
	Redis RedisCfg

	// Store selects the record store backend: "postgres" or "memory".
	Store string
	// PageSize is the fixed pagination window shared with clients.
	PageSize int
	// RateLimitPerMin caps requests per client per minute; 0 disables.
	RateLimitPerMin int
}

func Load() Cfg {
	// 1) Load .env into process env (if file exists)
	_ = godotenv.Load()

	// 2) Read from env via viper
	viper.AutomaticEnv()
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("STORE", "postgres")
	viper.SetDefault("PAGE_SIZE", 10)
	viper.SetDefault("RATE_LIMIT_PER_MIN", 0)

	cfg := Cfg{
		App: AppCfg{
			Env:  viper.GetString("APP_ENV"),
			Port: viper.GetString("APP_PORT"),
		},
		DB:              DBCfg{DSN: viper.GetString("DB_DSN")},
		Redis:           RedisCfg{Addr: viper.GetString("REDIS_ADDR")},
		Store:           viper.GetString("STORE"),
		PageSize:        viper.GetInt("PAGE_SIZE"),
		RateLimitPerMin: viper.GetInt("RATE_LIMIT_PER_MIN"),
	}

	// 3) Fail fast on required settings
	switch cfg.Store {
	case "postgres":
		if cfg.DB.DSN == "" {
			log.Fatal().Msg("DB_DSN is required when STORE=postgres")
		}
	case "memory":
	default:
		log.Fatal().Str("store", cfg.Store).Msg("STORE must be postgres or memory")
	}
	if cfg.PageSize < 1 {
		log.Fatal().Msg("PAGE_SIZE must be a positive integer")
	}

	return cfg
}
