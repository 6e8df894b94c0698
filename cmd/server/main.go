package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"resham-cricketer/cmd/config"
	"resham-cricketer/pkg/auth"
	"resham-cricketer/pkg/clips"
	"resham-cricketer/pkg/database"
	"resham-cricketer/pkg/engagement"
	"resham-cricketer/pkg/feed"
	"resham-cricketer/pkg/handlers"
	"resham-cricketer/pkg/live"
	"resham-cricketer/pkg/logging"
	"resham-cricketer/pkg/metrics"
	"resham-cricketer/pkg/notify"
	"resham-cricketer/pkg/profile"
	"resham-cricketer/pkg/s3"
	"resham-cricketer/pkg/store"
)

func main() {
	cfg, err := config.Load("cmd/config")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.Database.Dialect, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := live.NewHub(logger)
	var kv notify.KV = notify.NewMemoryKV()
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.String("address", cfg.Redis.Address), zap.Error(err))
		}

		bridge := live.NewRedisBridge(client, hub, cfg.Redis.Channel, logger)
		hub.SetForwarder(bridge)
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("redis bridge stopped", zap.Error(err))
			}
		}()
		kv = notify.NewRedisKV(client)
	}

	loc, err := time.LoadLocation(cfg.Feed.DefaultTimezone)
	if err != nil {
		logger.Fatal("invalid default timezone", zap.Error(err))
	}

	s := store.New(db, hub)
	m := metrics.New()
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	notifier := notify.NewNotifier(s, m, logger)

	deps := handlers.Deps{
		Store:           s,
		Hub:             hub,
		Accounts:        auth.NewAccounts(s, tokens, logger),
		Tokens:          tokens,
		Feed:            feed.NewAggregator(s, hub, cfg.Feed.MaxVideos, logger),
		Clips:           clips.NewService(s, notifier, logger),
		Counters:        engagement.NewCounters(s, notifier, m, logger),
		Profiles:        profile.NewSynchronizer(s, m, logger),
		ReadState:       notify.NewReadState(kv),
		Metrics:         m,
		Logger:          logger,
		DefaultLocation: loc,
		RateRPS:         cfg.RateLimit.RPS,
		RateBurst:       cfg.RateLimit.Burst,
	}
	if cfg.Auth.FederatedSecret != "" {
		deps.Identity = auth.NewIdentityVerifier(cfg.Auth.FederatedSecret)
	}
	if cfg.AWS.S3Bucket != "" {
		uploader, err := s3.NewUploader(cfg.AWS.Region, cfg.AWS.S3Bucket)
		if err != nil {
			logger.Fatal("failed to create s3 uploader", zap.Error(err))
		}
		deps.Thumbnails = uploader
	}

	if cfg.Log.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: handlers.New(deps).Router(),
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
