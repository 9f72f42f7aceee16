package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/handlers"
	"github.com/nijaru/yt-summary/logger"
	"github.com/nijaru/yt-summary/summary"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log, logCloser, err := logger.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, cleanup, err := summary.NewFromConfig(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize summary service")
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.WithError(err).Error("Failed to close summary archive")
		}
	}()

	server := handlers.NewServer(cfg, service, handlers.WithLogger(log))

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.WithFields(logrus.Fields{
		"version": cfg.Version,
		"model":   cfg.Gemini.Model,
		"style":   cfg.Prompt.Style,
	}).Info("Server started")

	select {
	case err := <-errCh:
		log.WithError(err).Error("Server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.Info("Server stopped")
}
