package main

import (
	"context"
	"os"
	"time"

	"github.com/marketbay/auction-engine/internal/dependency"
	"github.com/marketbay/auction-engine/internal/server"
	"github.com/marketbay/auction-engine/pkg/config"
	"github.com/marketbay/auction-engine/pkg/logger"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CONFIG] failed to load -> %s", err.Error())
	}

	log.Infow("initializing auction engine", "env", cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := dependency.NewDependencies(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Errorw("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, deps, log)
	if err := srv.Run(); err != nil {
		log.Errorw("server failed to run", "error", err)
		os.Exit(1)
	}
}
