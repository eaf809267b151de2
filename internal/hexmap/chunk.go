package hexmap

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/logger"
)

// Chunk is a rectangular block of cells that shares one set of meshes. It is
// the unit of dirty tracking and retriangulation.
type Chunk struct {
	index int
	cells []*Cell
	grid  *Grid

	dirty      bool
	generation uint64

	geometry [LayerCount]Geometry
	features []FeatureInstance
}

func newChunk(g *Grid, index, capacity int) *Chunk {
	return &Chunk{
		index: index,
		cells: make([]*Cell, capacity),
		grid:  g,
		dirty: true,
	}
}

// Index returns the chunk's position in the grid's chunk array.
func (c *Chunk) Index() int { return c.index }

// Cells returns the chunk's cells in row-major order.
func (c *Chunk) Cells() []*Cell { return c.cells }

// Dirty reports whether the chunk waits for a refresh.
func (c *Chunk) Dirty() bool { return c.dirty }

// MarkDirty schedules the chunk for the next refresh pass.
func (c *Chunk) MarkDirty() { c.dirty = true }

// Generation counts completed triangulations of the chunk.
func (c *Chunk) Generation() uint64 { return c.generation }

// Geometry returns the last triangulated mesh of a layer.
func (c *Chunk) Geometry(l Layer) *Geometry {
	return &c.geometry[l]
}

// Features returns the decorative props placed by the last triangulation.
func (c *Chunk) Features() []FeatureInstance {
	return c.features
}

func (c *Chunk) addCell(localIndex int, cell *Cell) {
	c.cells[localIndex] = cell
	cell.chunk = c
}

// Triangulate rebuilds every mesh of the chunk from the current cell state
// and clears the dirty flag.
func (c *Chunk) Triangulate() {
	start := time.Now()

	t := newTriangulator(c.grid.metrics, c.grid.catalog, c.grid.pool)
	c.geometry, c.features = t.Triangulate(c.cells)
	c.dirty = false
	c.generation++

	logger.Debug("chunk triangulated",
		zap.Int("chunk", c.index),
		zap.Int("terrain_triangles", c.geometry[LayerTerrain].TriangleCount()),
		zap.Int("features", len(c.features)),
		zap.Duration("took", time.Since(start)))
}
