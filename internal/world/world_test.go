package world

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/hexmap/internal/config"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/noise"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Grid.ChunkCountX = 2
	cfg.Grid.ChunkCountZ = 1
	cfg.Noise.Size = 16
	return cfg
}

func TestNewGeneratesMap(t *testing.T) {
	w, err := New(context.Background(), smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	if w.Grid.CellCountX() != 10 || w.Grid.CellCountZ() != 5 {
		t.Errorf("grid %dx%d", w.Grid.CellCountX(), w.Grid.CellCountZ())
	}
	if w.Noise.Width() != 16 {
		t.Errorf("noise size %d", w.Noise.Width())
	}
	if w.Summary.Land+w.Summary.Underwater != len(w.Grid.Cells()) {
		t.Errorf("summary %+v does not cover the grid", w.Summary)
	}

	n, err := w.Refresh(context.Background(), 2)
	if err != nil || n != 2 {
		t.Errorf("refresh = %d, %v", n, err)
	}
}

func TestNewWithoutMapgen(t *testing.T) {
	cfg := smallConfig()
	cfg.Mapgen.Enabled = false
	w, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range w.Grid.Cells() {
		if c.Elevation() != 0 || c.WaterLevel() != 0 {
			t.Fatalf("cell %v was edited", c.Coordinates())
		}
	}
	if n, _ := w.Refresh(context.Background(), 0); n != 2 {
		t.Errorf("serial refresh = %d", n)
	}
}

func TestNewLoadsTexture(t *testing.T) {
	tex, err := noise.NewTexture(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "noise.png")
	if err := tex.Save(path); err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig()
	cfg.Noise.Texture = path
	w, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if w.Noise.Width() != 4 {
		t.Errorf("loaded noise width %d", w.Noise.Width())
	}

	cfg.Noise.Texture = filepath.Join(t.TempDir(), "missing.png")
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("missing texture accepted")
	}
}

func TestNewRejectsBadGrid(t *testing.T) {
	cfg := smallConfig()
	cfg.Grid.DefaultColor = "blue"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("bad color accepted")
	}
	cfg = smallConfig()
	cfg.Grid.ChunkCountX = 0
	if _, err := New(context.Background(), cfg); !errors.Is(err, hexmap.ErrInvalidSize) {
		t.Errorf("empty grid: err = %v", err)
	}
	cfg = smallConfig()
	cfg.Metrics.TerracesPerSlope = 0
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("zero terraces accepted")
	}
}
