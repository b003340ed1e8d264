package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/cache"
	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/lock"
	"app/internal/logger"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := config.LoadDotEnv("../.env", ".env"); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{
		Service: "cart",
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
		Console: !cfg.IsProd(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	//キャッシュ（REDIS_ADDRが無ければ使わない）
	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			//起動は続ける。breakerが落ちている間は素通しになる
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
		}
		cartCache = cache.NewBreakerCache(
			cache.NewRedisCache(rdb, cfg.CacheTTL),
			cache.BreakerSettings{Name: "cart-cache"},
			log,
		)
	}

	//Repository / Usecase
	cartUC := usecase.NewCartUsecase(
		infraRepo.NewCartGormRepository(gormDB),
		infraRepo.NewTxManagerGorm(gormDB),
		cartCache,
		lock.NewKeyedMutex(),
		&realClock{},
		log,
	)

	//Handler / Server
	cartH := handler.NewCartHandler(cartUC)
	e := server.New(log, cartH)

	return server.Start(ctx, e, cfg.Addr(), cfg.ShutdownTimeout, log)
}
