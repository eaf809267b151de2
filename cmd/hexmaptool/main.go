// hexmaptool is a CLI utility for generating, inspecting and exporting hex maps.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/Faultbox/hexmap/internal/config"
	"github.com/Faultbox/hexmap/internal/export"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/internal/noise"
	"github.com/Faultbox/hexmap/internal/world"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case "generate", "gen":
		err = cmdGenerate(ctx, args)
	case "stats":
		err = cmdStats(ctx, args)
	case "export":
		err = cmdExport(ctx, args)
	case "noise":
		err = cmdNoise(ctx, args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hexmaptool - hex map utility

Usage:
  hexmaptool <command> [options]

Commands:
  generate [options]               Generate a map and print a summary
  stats [options]                  Triangulate the map and print mesh statistics
  export [options] <out.obj>       Export chunk geometry as Wavefront OBJ
  noise [options] <out.png>        Write a generated noise texture
  config [options] [path]          Write the effective configuration

Every command accepts the shared options (-config, -seed, -chunks-x,
-chunks-z, -noise, -debug).

Examples:
  hexmaptool generate -seed 7 -chunks-x 8 -chunks-z 6
  hexmaptool export -layers terrain,water -chunks 0,1 map.obj
  hexmaptool noise -size 512 noise.png`)
}

// setup parses the shared flags plus any command specific ones and loads the
// configuration.
func setup(name string, args []string, extra func(fs *flag.FlagSet)) (*config.Config, *flag.FlagSet, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	var flags config.Flags
	flags.Register(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)

	cfg, err := config.Load(&flags)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, err
	}
	return cfg, fs, nil
}

func buildWorld(ctx context.Context, cfg *config.Config) (*world.World, error) {
	w, err := world.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := w.Refresh(ctx, cfg.Grid.Workers); err != nil {
		return nil, err
	}
	return w, nil
}

func cmdGenerate(ctx context.Context, args []string) error {
	cfg, _, err := setup("generate", args, nil)
	if err != nil {
		return err
	}
	cfg.Mapgen.Enabled = true

	w, err := world.New(ctx, cfg)
	if err != nil {
		return err
	}

	s := w.Summary
	fmt.Printf("Grid:        %d x %d cells\n", w.Grid.CellCountX(), w.Grid.CellCountZ())
	fmt.Printf("Seed:        %d\n", cfg.Mapgen.Seed)
	fmt.Printf("Land:        %d\n", s.Land)
	fmt.Printf("Underwater:  %d\n", s.Underwater)
	fmt.Printf("Rivers:      %d (%d cells)\n", s.Rivers, s.RiverCells)
	fmt.Printf("Roads:       %d\n", s.Roads)
	fmt.Printf("Walled:      %d\n", s.Walled)
	return nil
}

func cmdStats(ctx context.Context, args []string) error {
	cfg, _, err := setup("stats", args, nil)
	if err != nil {
		return err
	}
	w, err := buildWorld(ctx, cfg)
	if err != nil {
		return err
	}

	var vertices, triangles [hexmap.LayerCount]int
	features := make(map[hexmap.FeatureCategory]int)
	for _, c := range w.Grid.Chunks() {
		for _, l := range hexmap.Layers {
			geo := c.Geometry(l)
			vertices[l] += geo.VertexCount()
			triangles[l] += geo.TriangleCount()
		}
		for _, f := range c.Features() {
			features[f.Prefab.Category]++
		}
	}

	fmt.Printf("Cells:   %d\n", len(w.Grid.Cells()))
	fmt.Printf("Chunks:  %d\n", len(w.Grid.Chunks()))
	fmt.Println()
	fmt.Println("Layers:")
	for _, l := range hexmap.Layers {
		fmt.Printf("  %-12s %8d vertices %8d triangles\n", l, vertices[l], triangles[l])
	}
	fmt.Println()
	fmt.Println("Features:")
	for _, cat := range []hexmap.FeatureCategory{hexmap.Urban, hexmap.Farm, hexmap.Plant, hexmap.Tower} {
		fmt.Printf("  %-12s %d\n", cat, features[cat])
	}
	return nil
}

func cmdExport(ctx context.Context, args []string) error {
	var layers, chunks string
	cfg, fs, err := setup("export", args, func(fs *flag.FlagSet) {
		fs.StringVar(&layers, "layers", "", "Comma separated layers to export (default all)")
		fs.StringVar(&chunks, "chunks", "", "Comma separated chunk indices to export (default all)")
	})
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: hexmaptool export [options] <out.obj>")
	}

	opts, err := exportOptions(layers, chunks)
	if err != nil {
		return err
	}
	w, err := buildWorld(ctx, cfg)
	if err != nil {
		return err
	}

	stats, err := export.SaveOBJ(fs.Arg(0), w.Grid, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d objects, %d vertices, %d triangles\n",
		fs.Arg(0), stats.Objects, stats.Vertices, stats.Triangles)
	return nil
}

func exportOptions(layers, chunks string) (export.Options, error) {
	var opts export.Options
	for _, name := range splitList(layers) {
		l, ok := hexmap.ParseLayer(name)
		if !ok {
			return opts, fmt.Errorf("unknown layer %q", name)
		}
		opts.Layers = append(opts.Layers, l)
	}
	for _, s := range splitList(chunks) {
		i, err := strconv.Atoi(s)
		if err != nil {
			return opts, fmt.Errorf("chunk index %q: %w", s, err)
		}
		opts.Chunks = append(opts.Chunks, i)
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func cmdNoise(ctx context.Context, args []string) error {
	var size, octaves int
	cfg, fs, err := setup("noise", args, func(fs *flag.FlagSet) {
		fs.IntVar(&size, "size", 0, "Texture size in pixels (default from config)")
		fs.IntVar(&octaves, "octaves", 0, "Noise octaves (default from config)")
	})
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: hexmaptool noise [options] <out.png>")
	}

	opts := cfg.Noise.GenerateOptions()
	if size > 0 {
		opts.Size = size
	}
	if octaves > 0 {
		opts.Octaves = octaves
	}

	tex, err := noise.Generate(ctx, opts)
	if err != nil {
		return err
	}
	if err := tex.Save(fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %dx%d, seed %d\n", fs.Arg(0), tex.Width(), tex.Height(), opts.Seed)
	return nil
}

func cmdConfig(args []string) error {
	cfg, fs, err := setup("config", args, nil)
	if err != nil {
		return err
	}
	if fs.NArg() == 0 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	path := fs.Arg(0)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
