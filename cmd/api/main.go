package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pageza/recepti/backend/config"
	"github.com/pageza/recepti/backend/internal/logging"
	"github.com/pageza/recepti/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.Must(cfg.LogLevel, cfg.Env.IsDevelopment())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize server", zap.Error(err))
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		log.Error("server error", zap.Error(err))
		return
	}
	log.Info("server stopped")
}
