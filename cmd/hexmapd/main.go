// Package main runs the hex map editing service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/api"
	"github.com/Faultbox/hexmap/internal/config"
	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/internal/world"
)

func main() {
	var flags config.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("hexmapd failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("hexmapd stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	w, err := world.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build world: %w", err)
	}

	start := time.Now()
	n, err := w.Refresh(ctx, cfg.Grid.Workers)
	if err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}
	logger.Info("grid ready",
		zap.Int("cells", len(w.Grid.Cells())),
		zap.Int("chunks", n),
		zap.Duration("took", time.Since(start)))

	srv, err := api.NewServer(w.Grid, cfg.Server.Options(cfg.Grid.Workers))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	return srv.ListenAndServe(ctx, cfg.Server.Listen)
}
