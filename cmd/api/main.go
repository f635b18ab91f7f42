package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/config"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-court-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-court-booking/internal/server"
)

func main() {
	// .env は任意（本番では環境変数を直接渡す）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer func() { _ = logger.Sync() }()

	srv, err := server.New(cfg, server.Options{Metrics: metrics.Init()})
	if err != nil {
		logger.Fatal("サーバーの初期化に失敗しました", zap.Error(err))
	}
	srv.Echo.Server.ReadTimeout = cfg.Server.ReadTimeout
	srv.Echo.Server.WriteTimeout = cfg.Server.WriteTimeout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Graceful shutdown
	go func() {
		logger.Info("サーバーを起動します",
			zap.String("addr", cfg.Server.Addr()),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage.Backend),
		)
		if err := srv.Start(ctx, cfg.Server.Addr()); err != nil {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	<-ctx.Done()
	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}
	logger.Info("サーバーを停止しました")
}
