package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	postgresRepo "github.com/videoanalytics/api-gateway/internal/adapters/db/postgres"
	redisRepo "github.com/videoanalytics/api-gateway/internal/adapters/db/redis"
	httpTransport "github.com/videoanalytics/api-gateway/internal/adapters/transport/http"
	"github.com/videoanalytics/api-gateway/internal/auth/service"
	"github.com/videoanalytics/api-gateway/internal/auth/token"
	"github.com/videoanalytics/api-gateway/internal/config"
	lg "github.com/videoanalytics/api-gateway/internal/infra/log"
	"github.com/videoanalytics/api-gateway/internal/infra/migrate"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		zapLog.Fatal("failed to init token codec", zap.Error(err))
	}

	tokenRepo := postgresRepo.NewRefreshTokenRepo(db)
	svc := service.NewAuthService(
		postgresRepo.NewUserRepo(db),
		postgresRepo.NewRoleRepo(db),
		tokenRepo,
		codec,
		cfg,
		validator.New(),
	)
	counter := redisRepo.NewCounter(redisCli)

	router, err := httpTransport.NewRouter(svc, codec, counter, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("failed to assemble router", zap.Error(err))
	}

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("gateway listening", zap.String("address", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Expired refresh rows are dead weight: the rotation path already
	// rejects them, the sweeper just keeps the table from growing.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.TokenSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed, err := tokenRepo.PurgeExpired(ctx, time.Now())
				if err != nil {
					zapLog.Warn("token sweep failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					zapLog.Info("token sweep", zap.Int64("removed", removed))
				}
			}
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
