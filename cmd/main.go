package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/call-service/config"
	"github.com/cwrk-planet/call-service/internal/broadcast"
	"github.com/cwrk-planet/call-service/internal/postgres"
	"github.com/cwrk-planet/call-service/internal/redisx"
	"github.com/cwrk-planet/call-service/internal/service"
	httpx "github.com/cwrk-planet/call-service/internal/transport/http"
	"github.com/cwrk-planet/logger/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting call-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- redis (каталог присутствия) ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()

	// --- store & services ---
	store := postgres.NewStore(db.Pool)
	presence := redisx.NewPresence(rdb)
	hub := broadcast.NewHub()

	callSvc := service.NewCallService(store, presence)
	mediaSvc := service.NewMediaService(store, hub)
	userSvc := service.NewUserService(store)

	if err := mediaSvc.EnsureDefaults(ctx); err != nil {
		log.Fatalf("seed media settings: %v", err)
	}

	// --- presence listener ---
	listenerCtx, stopListener := context.WithCancel(ctx)
	defer stopListener()
	listener := redisx.NewListener(rdb, cfg.Redis.OnlineChannel, cfg.Redis.OfflineChannel, userSvc, callSvc)

	errCh := make(chan error, 2)

	go func() {
		slog.Info("presence listener started",
			"online", cfg.Redis.OnlineChannel, "offline", cfg.Redis.OfflineChannel)
		if err := listener.Run(listenerCtx); err != nil && listenerCtx.Err() == nil {
			errCh <- err
		}
	}()

	// --- HTTP (health + админские настройки) ---
	handler := httpx.NewHandler(mediaSvc, db.Pool)
	router := httpx.NewRouter(handler, cfg.HTTP.AdminToken)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopListener()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
