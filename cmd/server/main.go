package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftwallet-service/internal/config"
	"giftwallet-service/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	reconCtx, stopReconciler := context.WithCancel(context.Background())
	go srv.RunReconciler(reconCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gift wallet service starting", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down gracefully")
		stopReconciler()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		stopReconciler()
		logger.Fatal("server exited", zap.Error(err))
	}
}
