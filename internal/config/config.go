// Package config handles hex map configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/hexmap/internal/api"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/mapgen"
	"github.com/Faultbox/hexmap/internal/noise"
	"github.com/Faultbox/hexmap/pkg/math"
)

// Config holds all settings shared by the viewer, the tool and the server.
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Metrics MetricsConfig `yaml:"metrics"`
	Noise   NoiseConfig   `yaml:"noise"`
	Mapgen  MapgenConfig  `yaml:"mapgen"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// GridConfig sizes the grid.
type GridConfig struct {
	ChunkCountX  int    `yaml:"chunk_count_x"`
	ChunkCountZ  int    `yaml:"chunk_count_z"`
	ChunkSizeX   int    `yaml:"chunk_size_x"`
	ChunkSizeZ   int    `yaml:"chunk_size_z"`
	DefaultColor string `yaml:"default_color"`
	Workers      int    `yaml:"workers"` // parallel refresh, 0 = one per CPU
}

// MetricsConfig holds the cell geometry tuning.
type MetricsConfig struct {
	ElevationStep            float32 `yaml:"elevation_step"`
	CellPerturbStrength      float32 `yaml:"cell_perturb_strength"`
	ElevationPerturbStrength float32 `yaml:"elevation_perturb_strength"`
	NoiseScale               float32 `yaml:"noise_scale"`
	TerracesPerSlope         int     `yaml:"terraces_per_slope"`
	HashSeed                 int64   `yaml:"hash_seed"`
	HashGridSize             int     `yaml:"hash_grid_size"`
	HashGridScale            float32 `yaml:"hash_grid_scale"`
	WallTowerThreshold       float32 `yaml:"wall_tower_threshold"`
}

// NoiseConfig selects the perturbation texture.
type NoiseConfig struct {
	Texture string `yaml:"texture"` // image path; empty generates one
	Size    int    `yaml:"size"`
	Seed    int64  `yaml:"seed"`
	Octaves int    `yaml:"octaves"`
}

// MapgenConfig controls the procedural starting map.
type MapgenConfig struct {
	Enabled      bool  `yaml:"enabled"`
	Seed         int64 `yaml:"seed"`
	WaterLevel   int   `yaml:"water_level"`
	MinElevation int   `yaml:"min_elevation"`
	MaxElevation int   `yaml:"max_elevation"`
	Rivers       int   `yaml:"rivers"`
}

// ViewerConfig holds display settings of hexview.
type ViewerConfig struct {
	Width         int      `yaml:"width"`
	Height        int      `yaml:"height"`
	Fullscreen    bool     `yaml:"fullscreen"`
	VSync         bool     `yaml:"vsync"`
	Wireframe     bool     `yaml:"wireframe"`
	HiddenLayers  []string `yaml:"hidden_layers"` // layer names or "features"
	ScreenshotDir string   `yaml:"screenshot_dir"`
	SunAzimuth    float32  `yaml:"sun_azimuth"`   // degrees around +Y
	SunElevation  float32  `yaml:"sun_elevation"` // degrees above the horizon
}

// ServerConfig holds hexmapd settings.
type ServerConfig struct {
	Listen       string `yaml:"listen"`
	AutoRefresh  bool   `yaml:"auto_refresh"`
	CacheMaxCost int64  `yaml:"cache_max_cost"` // bytes
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	s := hexmap.DefaultSettings()
	g := mapgen.DefaultOptions()
	return &Config{
		Grid: GridConfig{
			ChunkCountX:  4,
			ChunkCountZ:  3,
			ChunkSizeX:   hexmap.DefaultChunkSizeX,
			ChunkSizeZ:   hexmap.DefaultChunkSizeZ,
			DefaultColor: "#e6d38c",
		},
		Metrics: MetricsConfig{
			ElevationStep:            s.ElevationStep,
			CellPerturbStrength:      s.CellPerturbStrength,
			ElevationPerturbStrength: s.ElevationPerturbStrength,
			NoiseScale:               s.NoiseScale,
			TerracesPerSlope:         s.TerracesPerSlope,
			HashSeed:                 s.HashSeed,
			HashGridSize:             s.HashGridSize,
			HashGridScale:            s.HashGridScale,
			WallTowerThreshold:       s.WallTowerThreshold,
		},
		Noise: NoiseConfig{
			Size:    256,
			Seed:    1,
			Octaves: 4,
		},
		Mapgen: MapgenConfig{
			Enabled:      true,
			Seed:         g.Seed,
			WaterLevel:   g.WaterLevel,
			MinElevation: g.MinElevation,
			MaxElevation: g.MaxElevation,
			Rivers:       g.Rivers,
		},
		Viewer: ViewerConfig{
			Width:         1280,
			Height:        720,
			VSync:         true,
			ScreenshotDir: "screenshots",
			SunAzimuth:    135,
			SunElevation:  50,
		},
		Server: ServerConfig{
			Listen:       "127.0.0.1:8080",
			AutoRefresh:  true,
			CacheMaxCost: 64 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside grid
// construction.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.ChunkCountX <= 0 || c.Grid.ChunkCountZ <= 0 {
		errs = append(errs, fmt.Errorf("grid: chunk count %dx%d must be positive", c.Grid.ChunkCountX, c.Grid.ChunkCountZ))
	}
	if c.Grid.ChunkSizeX <= 0 || c.Grid.ChunkSizeZ <= 0 {
		errs = append(errs, fmt.Errorf("grid: chunk size %dx%d must be positive", c.Grid.ChunkSizeX, c.Grid.ChunkSizeZ))
	}
	if _, err := math.ParseHexColor(c.Grid.DefaultColor); err != nil {
		errs = append(errs, fmt.Errorf("grid: default_color: %w", err))
	}
	if c.Metrics.TerracesPerSlope < 1 {
		errs = append(errs, errors.New("metrics: terraces_per_slope must be at least 1"))
	}
	if c.Metrics.HashGridSize <= 0 {
		errs = append(errs, errors.New("metrics: hash_grid_size must be positive"))
	}
	if c.Noise.Texture == "" && c.Noise.Size <= 0 {
		errs = append(errs, errors.New("noise: size must be positive"))
	}
	if c.Mapgen.MaxElevation < c.Mapgen.MinElevation {
		errs = append(errs, errors.New("mapgen: max_elevation below min_elevation"))
	}
	for _, name := range c.Viewer.HiddenLayers {
		if _, ok := hexmap.ParseLayer(name); !ok && name != "features" {
			errs = append(errs, fmt.Errorf("viewer: unknown layer %q", name))
		}
	}
	return errors.Join(errs...)
}

// Settings converts the metrics section.
func (c MetricsConfig) Settings() hexmap.Settings {
	return hexmap.Settings{
		ElevationStep:            c.ElevationStep,
		CellPerturbStrength:      c.CellPerturbStrength,
		ElevationPerturbStrength: c.ElevationPerturbStrength,
		NoiseScale:               c.NoiseScale,
		TerracesPerSlope:         c.TerracesPerSlope,
		HashSeed:                 c.HashSeed,
		HashGridSize:             c.HashGridSize,
		HashGridScale:            c.HashGridScale,
		WallTowerThreshold:       c.WallTowerThreshold,
	}
}

// Options converts the grid section.
func (c GridConfig) Options() (hexmap.Options, error) {
	color, err := math.ParseHexColor(c.DefaultColor)
	if err != nil {
		return hexmap.Options{}, fmt.Errorf("default_color: %w", err)
	}
	return hexmap.Options{
		ChunkCountX:  c.ChunkCountX,
		ChunkCountZ:  c.ChunkCountZ,
		ChunkSizeX:   c.ChunkSizeX,
		ChunkSizeZ:   c.ChunkSizeZ,
		DefaultColor: color,
	}, nil
}

// GenerateOptions converts the noise section.
func (c NoiseConfig) GenerateOptions() noise.GenerateOptions {
	opts := noise.DefaultGenerateOptions()
	opts.Size = c.Size
	opts.Seed = c.Seed
	if c.Octaves > 0 {
		opts.Octaves = c.Octaves
	}
	return opts
}

// Options converts the mapgen section.
func (c MapgenConfig) Options() mapgen.Options {
	opts := mapgen.DefaultOptions()
	opts.Seed = c.Seed
	opts.WaterLevel = c.WaterLevel
	opts.MinElevation = c.MinElevation
	opts.MaxElevation = c.MaxElevation
	opts.Rivers = c.Rivers
	return opts
}

// Options converts the server section.
func (c ServerConfig) Options(workers int) api.Options {
	return api.Options{
		Workers:      workers,
		AutoRefresh:  c.AutoRefresh,
		CacheMaxCost: c.CacheMaxCost,
	}
}
