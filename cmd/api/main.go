package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"reqdesk/internal/config"
	httpx "reqdesk/internal/http"
	requestsvc "reqdesk/internal/services/request"
	"reqdesk/internal/store/memory"
	"reqdesk/internal/store/postgres"
	"reqdesk/internal/store/repositories"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store. The postgres connection is lazy: request paths dial it
	// on first use, the warm-up here is best effort only.
	var repo repositories.RequestRepository
	switch cfg.Store {
	case "memory":
		repo = memory.New()
		log.Info().Msg("using in-memory store")
	default:
		conn := postgres.NewLazy(postgres.Dial(cfg.DB.DSN))
		defer conn.Close()
		repo = postgres.NewRequestRepository(conn)
		go func() {
			if _, err := conn.Acquire(ctx); err != nil {
				log.Warn().Err(err).Msg("store warm-up failed, will retry on demand")
			}
		}()
	}

	svc := requestsvc.NewService(repo, cfg.PageSize)

	// Optional redis-backed rate limiter
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
	}

	r := httpx.NewRouter(httpx.RouterDependencies{
		RequestService:  svc,
		Redis:           rdb,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("ReqDesk API listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	log.Info().Msg("server stopped")
}
