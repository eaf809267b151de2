package hexmap

import (
	"testing"

	"github.com/Faultbox/hexmap/pkg/math"
)

var (
	sand  = math.HexColor(0xe6d38c)
	grass = math.HexColor(0x5fa04e)
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(DefaultSettings(), FlatNoise)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

// newTestGrid builds a single chunk grid of w x h cells without noise.
func newTestGrid(t *testing.T, w, h int) *Grid {
	t.Helper()
	g, err := NewGrid(newTestMetrics(t), Options{
		ChunkCountX:  1,
		ChunkCountZ:  1,
		ChunkSizeX:   w,
		ChunkSizeZ:   h,
		DefaultColor: sand,
	})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func layer(g *Grid, l Layer) *Geometry {
	return g.Chunk(0).Geometry(l)
}

func approxEqual(a, b math.Vec3) bool {
	return a.ApproxEqual(b, 1e-4)
}
