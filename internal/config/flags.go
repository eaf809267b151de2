package config

import "flag"

// Flags are the command-line overrides shared by the commands. Zero values
// leave the loaded configuration untouched.
type Flags struct {
	Config  string
	Debug   bool
	Seed    int64
	ChunksX int
	ChunksZ int
	Noise   string
	Listen  string
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.Int64Var(&f.Seed, "seed", 0, "Map generation seed")
	fs.IntVar(&f.ChunksX, "chunks-x", 0, "Grid width in chunks")
	fs.IntVar(&f.ChunksZ, "chunks-z", 0, "Grid height in chunks")
	fs.StringVar(&f.Noise, "noise", "", "Noise texture image (PNG, BMP, TIFF or TGA)")
	fs.StringVar(&f.Listen, "listen", "", "HTTP listen address")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Seed != 0 {
		cfg.Mapgen.Seed = f.Seed
	}
	if f.ChunksX > 0 {
		cfg.Grid.ChunkCountX = f.ChunksX
	}
	if f.ChunksZ > 0 {
		cfg.Grid.ChunkCountZ = f.ChunksZ
	}
	if f.Noise != "" {
		cfg.Noise.Texture = f.Noise
	}
	if f.Listen != "" {
		cfg.Server.Listen = f.Listen
	}
}
