package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/battlegrid-backend/internal/config"
	"github.com/DoyleJ11/battlegrid-backend/internal/dispatch"
	"github.com/DoyleJ11/battlegrid-backend/internal/history"
	"github.com/DoyleJ11/battlegrid-backend/internal/httpapi"
	"github.com/DoyleJ11/battlegrid-backend/internal/hub"
	"github.com/DoyleJ11/battlegrid-backend/internal/registry"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	var recorder dispatch.Recorder
	if cfg.DatabaseURL != "" {
		store, err := history.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open match history store", zap.Error(err))
		}
		recorder = store
	}

	h := hub.New(logger)
	d := dispatch.New(dispatch.Options{
		ServerName:  cfg.ServerName,
		Registry:    registry.New(),
		Publisher:   h,
		Logger:      logger,
		Recorder:    recorder,
		TurnTimeout: cfg.TurnTimeout,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(d, h, cfg.ServerName, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("server", cfg.ServerName))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Liveness announcement so clients can tell the server is up.
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				h.Publish(dispatch.ServerTopic(cfg.ServerName), cfg.ServerName)
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	d.Shutdown()
	if err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
