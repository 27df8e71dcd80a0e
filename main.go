package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jsoncrud/config"
	"jsoncrud/config/database"
	"jsoncrud/metrics"
	"jsoncrud/pkg/logger"
	"jsoncrud/router"
	"jsoncrud/socket"
	"jsoncrud/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration comes from the environment, optionally seeded by .env.
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the backend holding the document.
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open %s store: %v", cfg.Backend, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st := store.New(backend,
		store.WithLockTimeout(cfg.LockTimeout),
		store.WithObserver(metrics.NewStore(reg)),
	)
	defer st.Close()

	if err := st.Init(ctx); err != nil {
		logger.Sugar.Fatalf("Failed to initialize database: %v", err)
	}

	// 3. The hub fans committed changes out to websocket subscribers.
	hub := socket.NewHub()
	go hub.Run()
	defer hub.Close()

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: router.Setup(router.Deps{
			Store:      st,
			Hub:        hub,
			Metrics:    metrics.Handler(reg),
			JWTSecret:  cfg.JWTSecret,
			CORSOrigin: cfg.CORSOrigin,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Server running on %s (%s store)", cfg.Addr, cfg.Backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Errorf("Server stopped: %v", err)
		}
	case <-ctx.Done():
		logger.Sugar.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
		}
	}
}

func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b := store.NewPostgresBackend(db, store.DefaultDocumentKey)
		if err := b.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return b, nil
	case config.BackendPebble:
		return store.OpenPebbleBackend(cfg.StorePath, nil)
	default:
		return store.NewFileBackend(afero.NewOsFs(), cfg.StorePath), nil
	}
}
