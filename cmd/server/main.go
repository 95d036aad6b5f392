package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/faraganiev/testjowi/internal/auth"
	"github.com/faraganiev/testjowi/internal/config"
	"github.com/faraganiev/testjowi/internal/infrastructure/logger"
	"github.com/faraganiev/testjowi/internal/infrastructure/mysql"
	"github.com/faraganiev/testjowi/internal/metrics"
	"github.com/faraganiev/testjowi/internal/notify"
	"github.com/faraganiev/testjowi/internal/order"
	"github.com/faraganiev/testjowi/internal/product"
	"github.com/faraganiev/testjowi/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	ctx := context.Background()
	if err := mysql.Migrate(ctx, db); err != nil {
		zapLogger.Fatal("applying schema", zap.Error(err))
	}
	if err := mysql.Seed(ctx, db, cfg.Seed.AdminPassword, zapLogger); err != nil {
		zapLogger.Fatal("seeding database", zap.Error(err))
	}

	channel := notify.NewChannel(ctx, cfg.Redis, zapLogger)
	defer channel.Close()

	serverMetrics := metrics.NewServerMetrics()

	authModule := auth.NewModule(db, cfg, zapLogger)
	productModule := product.NewModule(db, zapLogger)
	ordersCtrl := order.NewModule(db, cfg, productModule.Service, channel, zapLogger)

	router := server.NewRouter(server.RouterDeps{
		Orders:   ordersCtrl,
		Products: productModule.Controller,
		Auth:     authModule,
		WS:       notify.NewWSController(channel, zapLogger),
		Health:   server.NewHealthController(db, zapLogger),
		Metrics:  serverMetrics,
		Logger:   zapLogger,
	})

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
