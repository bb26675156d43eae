package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fx-converter-go/internal/api"
	"fx-converter-go/internal/config"
	"fx-converter-go/internal/logger"
	"fx-converter-go/internal/widget"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := widget.New(cfg, log)
	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(ctx) }()

	server := api.NewAPIServer(cfg.Server, w, log)
	server.Start()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, gracefully shutting down...")
	case err := <-runErr:
		log.Error("Widget stopped unexpectedly", zap.Error(err))
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server", zap.Error(err))
	}
	stop()
	if runErr != nil {
		<-runErr
	}

	log.Info("Converter API has been shut down.")
}
