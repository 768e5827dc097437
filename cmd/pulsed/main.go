// Command pulsed runs the probe engine and its management API.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightloop/pulse/internal/alert"
	"github.com/brightloop/pulse/internal/api"
	"github.com/brightloop/pulse/internal/config"
	"github.com/brightloop/pulse/internal/engine"
	"github.com/brightloop/pulse/internal/logging"
	"github.com/brightloop/pulse/internal/store"
)

func main() {
	logger, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(store.Config{
		Driver: cfg.StoreDriver,
		Path:   cfg.StorePath,
		URL:    cfg.StoreURL,
	})
	if err != nil {
		logger.Fatalw("open store", "error", err)
	}
	defer func() { _ = s.Close() }()

	transport := alert.NewSMTPTransport(alert.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.SMTPFromAddress,
		FromName:    cfg.SMTPFromName,
	})

	eng := engine.New(s, transport, engine.Config{
		TickInterval: cfg.TickInterval,
		WorkerCount:  cfg.WorkerCount,
	}, logger)
	eng.Start()
	defer eng.Stop()

	router := api.NewRouter(s, eng, cfg, logger)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		logger.Infow("listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("listen", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("server forced to shutdown", "error", err)
	}
	logger.Info("server exiting")
}
