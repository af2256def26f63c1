package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carehub/config"
	"carehub/internal/database"
	"carehub/internal/router"
	"carehub/internal/service"
	"carehub/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "carehub")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	if err := database.SeedAdmin(db, &cfg.Seed, log); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}

	ctx := context.Background()
	rdb, err := database.NewRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, rate limiting in memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var pusher service.Pusher
	if fcm := service.NewFCMService(ctx, cfg.Firebase.ServiceAccountPath, log); fcm != nil {
		pusher = fcm
		log.Info("push notifications enabled")
	} else {
		log.Info("push notifications disabled")
	}

	engine := router.Setup(cfg, db, rdb, pusher, log)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
