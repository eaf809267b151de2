// Package world assembles a ready-to-edit grid from configuration: noise
// source, metrics, cells and the optional generated starting map.
package world

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/config"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/internal/mapgen"
	"github.com/Faultbox/hexmap/internal/noise"
)

// World bundles the grid with what was used to build it.
type World struct {
	Grid    *hexmap.Grid
	Noise   *noise.Texture
	Summary mapgen.Summary
}

// LoadNoise reads the configured texture or generates one.
func LoadNoise(ctx context.Context, cfg config.NoiseConfig) (*noise.Texture, error) {
	if cfg.Texture != "" {
		tex, err := noise.Load(cfg.Texture)
		if err != nil {
			return nil, err
		}
		logger.Info("noise texture loaded",
			zap.String("path", cfg.Texture),
			zap.Int("width", tex.Width()),
			zap.Int("height", tex.Height()))
		return tex, nil
	}

	start := time.Now()
	tex, err := noise.Generate(ctx, cfg.GenerateOptions())
	if err != nil {
		return nil, err
	}
	logger.Info("noise texture generated",
		zap.Int("size", tex.Width()),
		zap.Int64("seed", cfg.Seed),
		zap.Duration("took", time.Since(start)))
	return tex, nil
}

// New builds the grid described by cfg and fills it when map generation is
// enabled. Chunks are left dirty; the caller decides when to refresh.
func New(ctx context.Context, cfg *config.Config) (*World, error) {
	tex, err := LoadNoise(ctx, cfg.Noise)
	if err != nil {
		return nil, fmt.Errorf("noise: %w", err)
	}

	metrics, err := hexmap.NewMetrics(cfg.Metrics.Settings(), tex)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	opts, err := cfg.Grid.Options()
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}
	grid, err := hexmap.NewGrid(metrics, opts)
	if err != nil {
		return nil, fmt.Errorf("grid: %w", err)
	}

	w := &World{Grid: grid, Noise: tex}
	if cfg.Mapgen.Enabled {
		w.Summary = mapgen.Generate(grid, cfg.Mapgen.Options())
	}
	return w, nil
}

// Refresh rebuilds dirty chunks with the configured worker count.
func (w *World) Refresh(ctx context.Context, workers int) (int, error) {
	if workers <= 0 {
		return w.Grid.RefreshDirty(), nil
	}
	return w.Grid.RefreshDirtyParallel(ctx, workers)
}
