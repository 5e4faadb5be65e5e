package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "swapchess/internal/api/http"
	"swapchess/internal/api/ws"
	"swapchess/internal/config"
	"swapchess/internal/msgcat"
	"swapchess/internal/obslog"
	"swapchess/internal/room"
	"swapchess/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger, err := obslog.Init(cfg.Log)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	msgs, err := msgcat.New(cfg.MessagesFile)
	if err != nil {
		logger.Fatal("message catalog", zap.Error(err))
	}

	opts := []room.Option{room.WithLogger(logger), room.WithCatalog(msgs)}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		reserver, err := store.NewRedisReserver(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Fatal("redis reserver", zap.Error(err))
		}
		defer func() { _ = reserver.Close() }()
		opts = append(opts, room.WithReserver(reserver))
		logger.Info("room_code_reservation_enabled")
	}

	mem := store.NewMemoryStore()
	rm := room.NewManager(mem, cfg, nil, opts...)
	hub := ws.NewHub(rm, cfg, msgs, logger)
	rm.SetBroadcaster(hub)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(rm, hub, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go rm.Reclaimer().Run(ctx)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown", zap.Error(err))
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		logger.Warn("hub_shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}
