package hexmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/pkg/math"
)

// Default chunk dimensions in cells.
const (
	DefaultChunkSizeX = 5
	DefaultChunkSizeZ = 5
)

// Options sizes a grid.
type Options struct {
	ChunkCountX  int
	ChunkCountZ  int
	ChunkSizeX   int
	ChunkSizeZ   int
	DefaultColor math.Color

	// Catalog supplies feature prefabs. Nil selects DefaultCatalog.
	Catalog *Catalog
}

// ChunkSink receives chunks after they were retriangulated. It is always
// called from the goroutine that started the refresh, in chunk order.
type ChunkSink interface {
	ChunkRefreshed(c *Chunk)
}

// ChunkSinkFunc adapts a function to ChunkSink.
type ChunkSinkFunc func(c *Chunk)

// ChunkRefreshed implements ChunkSink.
func (f ChunkSinkFunc) ChunkRefreshed(c *Chunk) { f(c) }

// Grid owns all cells in odd-row offset layout and the chunks that
// partition them.
type Grid struct {
	metrics *Metrics
	catalog *Catalog
	pool    *BufferPool

	chunkCountX, chunkCountZ int
	chunkSizeX, chunkSizeZ   int
	cellCountX, cellCountZ   int

	cells  []*Cell
	chunks []*Chunk

	sinks []ChunkSink
}

// NewGrid creates the cells and chunks and wires up neighbors. Every chunk
// starts dirty.
func NewGrid(m *Metrics, opts Options) (*Grid, error) {
	if m == nil {
		return nil, errors.New("hexmap: grid requires metrics")
	}
	if opts.ChunkSizeX == 0 {
		opts.ChunkSizeX = DefaultChunkSizeX
	}
	if opts.ChunkSizeZ == 0 {
		opts.ChunkSizeZ = DefaultChunkSizeZ
	}
	if opts.ChunkCountX <= 0 || opts.ChunkCountZ <= 0 {
		return nil, fmt.Errorf("chunk count %dx%d: %w", opts.ChunkCountX, opts.ChunkCountZ, ErrInvalidSize)
	}
	if opts.ChunkSizeX < 0 || opts.ChunkSizeZ < 0 {
		return nil, fmt.Errorf("chunk size %dx%d: %w", opts.ChunkSizeX, opts.ChunkSizeZ, ErrInvalidSize)
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}

	g := &Grid{
		metrics:     m,
		catalog:     opts.Catalog,
		pool:        NewBufferPool(),
		chunkCountX: opts.ChunkCountX,
		chunkCountZ: opts.ChunkCountZ,
		chunkSizeX:  opts.ChunkSizeX,
		chunkSizeZ:  opts.ChunkSizeZ,
		cellCountX:  opts.ChunkCountX * opts.ChunkSizeX,
		cellCountZ:  opts.ChunkCountZ * opts.ChunkSizeZ,
	}

	g.chunks = make([]*Chunk, g.chunkCountX*g.chunkCountZ)
	for i := range g.chunks {
		g.chunks[i] = newChunk(g, i, g.chunkSizeX*g.chunkSizeZ)
	}

	g.cells = make([]*Cell, g.cellCountX*g.cellCountZ)
	i := 0
	for z := 0; z < g.cellCountZ; z++ {
		for x := 0; x < g.cellCountX; x++ {
			g.createCell(x, z, i, opts.DefaultColor)
			i++
		}
	}

	logger.Info("grid created",
		zap.Int("cells_x", g.cellCountX),
		zap.Int("cells_z", g.cellCountZ),
		zap.Int("chunks", len(g.chunks)))
	return g, nil
}

func (g *Grid) createCell(x, z, i int, color math.Color) {
	cell := newCell(g.metrics, FromOffsetCoordinates(x, z), i, CellPosition(x, z), color)
	g.cells[i] = cell

	if x > 0 {
		cell.SetNeighbor(W, g.cells[i-1])
	}
	if z > 0 {
		if z&1 == 0 {
			cell.SetNeighbor(SE, g.cells[i-g.cellCountX])
			if x > 0 {
				cell.SetNeighbor(SW, g.cells[i-g.cellCountX-1])
			}
		} else {
			cell.SetNeighbor(SW, g.cells[i-g.cellCountX])
			if x < g.cellCountX-1 {
				cell.SetNeighbor(SE, g.cells[i-g.cellCountX+1])
			}
		}
	}

	chunkX := x / g.chunkSizeX
	chunkZ := z / g.chunkSizeZ
	chunk := g.chunks[chunkX+chunkZ*g.chunkCountX]

	localX := x - chunkX*g.chunkSizeX
	localZ := z - chunkZ*g.chunkSizeZ
	chunk.addCell(localX+localZ*g.chunkSizeX, cell)
}

// Metrics returns the geometry settings the grid was built with.
func (g *Grid) Metrics() *Metrics { return g.metrics }

// Catalog returns the prefab registry used for features.
func (g *Grid) Catalog() *Catalog { return g.catalog }

// CellCountX is the grid width in cells.
func (g *Grid) CellCountX() int { return g.cellCountX }

// CellCountZ is the grid height in cells.
func (g *Grid) CellCountZ() int { return g.cellCountZ }

// Cells returns all cells in row-major order.
func (g *Grid) Cells() []*Cell { return g.cells }

// Chunks returns all chunks in row-major order.
func (g *Grid) Chunks() []*Chunk { return g.chunks }

// Chunk returns the chunk at index i, or nil.
func (g *Grid) Chunk(i int) *Chunk {
	if i < 0 || i >= len(g.chunks) {
		return nil
	}
	return g.chunks[i]
}

// Subscribe registers a sink for refreshed chunks.
func (g *Grid) Subscribe(s ChunkSink) {
	g.sinks = append(g.sinks, s)
}

// CellAt returns the cell under a world position, or nil outside the grid.
func (g *Grid) CellAt(position math.Vec3) *Cell {
	return g.CellByCoords(FromPosition(position))
}

// CellByCoords returns the cell with the given coordinates, or nil outside
// the grid.
func (g *Grid) CellByCoords(c Coordinates) *Cell {
	x, z := c.Offset()
	return g.CellByOffset(x, z)
}

// CellByOffset returns the cell at offset coordinates, or nil outside the
// grid.
func (g *Grid) CellByOffset(x, z int) *Cell {
	if z < 0 || z >= g.cellCountZ || x < 0 || x >= g.cellCountX {
		return nil
	}
	return g.cells[x+z*g.cellCountX]
}

// CellsInRange returns the cells within radius steps of center, nearest
// rows first. Cells outside the grid are skipped.
func (g *Grid) CellsInRange(center Coordinates, radius int) []*Cell {
	if radius < 0 {
		return nil
	}
	var cells []*Cell
	for dz := -radius; dz <= radius; dz++ {
		for dx := max(-radius, -dz-radius); dx <= min(radius, -dz+radius); dx++ {
			if cell := g.CellByCoords(Coordinates{X: center.X + dx, Z: center.Z + dz}); cell != nil {
				cells = append(cells, cell)
			}
		}
	}
	return cells
}

// DirtyChunks counts chunks waiting for a refresh.
func (g *Grid) DirtyChunks() int {
	n := 0
	for _, c := range g.chunks {
		if c.dirty {
			n++
		}
	}
	return n
}

// RefreshDirty retriangulates every dirty chunk in array order and returns
// how many were rebuilt.
func (g *Grid) RefreshDirty() int {
	start := time.Now()
	n := 0
	for _, c := range g.chunks {
		if !c.dirty {
			continue
		}
		c.Triangulate()
		g.notify(c)
		n++
	}
	if n > 0 {
		logger.Info("refresh pass", zap.Int("chunks", n), zap.Duration("took", time.Since(start)))
	}
	return n
}

// RefreshAll marks every chunk dirty and refreshes them.
func (g *Grid) RefreshAll() int {
	for _, c := range g.chunks {
		c.MarkDirty()
	}
	return g.RefreshDirty()
}

// RefreshDirtyParallel retriangulates dirty chunks on up to workers
// goroutines. Chunks only read cell state and write their own buffers, so
// no locking is needed; cells must not be edited until it returns. Sinks are
// notified afterwards in chunk order. If ctx is cancelled, unscheduled
// chunks stay dirty and ctx.Err() is returned.
func (g *Grid) RefreshDirtyParallel(ctx context.Context, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	var scheduled []*Chunk
	for _, c := range g.chunks {
		if !c.dirty {
			continue
		}
		if egCtx.Err() != nil {
			break
		}
		scheduled = append(scheduled, c)
		eg.Go(func() error {
			c.Triangulate()
			return nil
		})
	}
	err := eg.Wait()

	for _, c := range scheduled {
		g.notify(c)
	}
	logger.Info("parallel refresh pass",
		zap.Int("chunks", len(scheduled)),
		zap.Int("workers", workers),
		zap.Duration("took", time.Since(start)))

	if err != nil {
		return len(scheduled), err
	}
	return len(scheduled), ctx.Err()
}

func (g *Grid) notify(c *Chunk) {
	for _, s := range g.sinks {
		s.ChunkRefreshed(c)
	}
}
