package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"barrot/backend"
	"barrot/backend/config"
)

// main loads config, starts the API + static server and stops on SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := backend.NewServer(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start server", "err", err)
		os.Exit(1)
	}
	if err := srv.Run(ctx); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}
