package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/export"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/pkg/math"
)

var errNoCell = errors.New("no cell at these coordinates")

func defaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// cellParam resolves the :x/:z offset coordinates. s.mu must be held.
func (s *Server) cellParam(c *gin.Context) (*hexmap.Cell, bool) {
	x, errX := strconv.Atoi(c.Param("x"))
	z, errZ := strconv.Atoi(c.Param("z"))
	if err := errors.Join(errX, errZ); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid cell coordinates: %w", err))
		return nil, false
	}
	cell := s.grid.CellByOffset(x, z)
	if cell == nil {
		fail(c, http.StatusNotFound, errNoCell)
		return nil, false
	}
	return cell, true
}

// finishEdit refreshes if configured and responds with the edited cells.
func (s *Server) finishEdit(c *gin.Context, cells ...*hexmap.Cell) {
	resp := editResponse{Cells: make([]cellResponse, 0, len(cells))}
	if s.opts.AutoRefresh {
		n, err := s.refreshLocked(c.Request.Context())
		if err != nil {
			fail(c, http.StatusInternalServerError, err)
			return
		}
		resp.Refreshed = n
	}
	for _, cell := range cells {
		resp.Cells = append(resp.Cells, newCellResponse(cell))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) gridInfo(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gridResponse{
		CellsX:      s.grid.CellCountX(),
		CellsZ:      s.grid.CellCountZ(),
		Chunks:      len(s.grid.Chunks()),
		DirtyChunks: s.grid.DirtyChunks(),
	})
}

func (s *Server) refresh(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Query("all") == "true" {
		for _, ch := range s.grid.Chunks() {
			ch.MarkDirty()
		}
	}
	n, err := s.refreshLocked(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, refreshResponse{Refreshed: n})
}

func (s *Server) cellAt(c *gin.Context) {
	x, errX := strconv.ParseFloat(c.Query("x"), 32)
	z, errZ := strconv.ParseFloat(c.Query("z"), 32)
	if err := errors.Join(errX, errZ); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid position: %w", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cell := s.grid.CellAt(math.Vec3{X: float32(x), Z: float32(z)})
	if cell == nil {
		fail(c, http.StatusNotFound, errNoCell)
		return
	}
	c.JSON(http.StatusOK, newCellResponse(cell))
}

func (s *Server) getCell(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cellParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newCellResponse(cell))
}

func (s *Server) patchCell(c *gin.Context) {
	var edit cellEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	color, err := edit.parse()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cellParam(c)
	if !ok {
		return
	}
	edit.apply(cell, color)
	s.finishEdit(c, cell)
}

func (s *Server) brush(c *gin.Context) {
	var req brushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if req.Radius < 0 {
		fail(c, http.StatusBadRequest, errors.New("radius must not be negative"))
		return
	}
	color, err := req.parse()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	center := s.grid.CellByOffset(req.X, req.Z)
	if center == nil {
		fail(c, http.StatusNotFound, errNoCell)
		return
	}
	cells := s.grid.CellsInRange(center.Coordinates(), req.Radius)
	for _, cell := range cells {
		req.apply(cell, color)
	}
	s.log.Debug("brush applied",
		zap.Stringer("center", center.Coordinates()),
		zap.Int("cells", len(cells)))
	s.finishEdit(c, cells...)
}

func bindDirection(c *gin.Context) (hexmap.Direction, bool) {
	var req directionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return 0, false
	}
	return *req.Direction, true
}

// setRiver starts an outgoing river. Invalid rivers are ignored by the cell;
// the response shows the resulting state.
func (s *Server) setRiver(c *gin.Context) {
	d, ok := bindDirection(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cellParam(c)
	if !ok {
		return
	}
	cell.SetOutgoingRiver(d)
	if n := cell.Neighbor(d); n != nil {
		s.finishEdit(c, cell, n)
		return
	}
	s.finishEdit(c, cell)
}

func (s *Server) removeRiver(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cellParam(c)
	if !ok {
		return
	}
	cell.RemoveRiver()
	s.finishEdit(c, cell)
}

func (s *Server) addRoad(c *gin.Context) {
	d, ok := bindDirection(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cellParam(c)
	if !ok {
		return
	}
	cell.AddRoad(d)
	s.finishEdit(c, cell)
}

func (s *Server) removeRoads(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cellParam(c)
	if !ok {
		return
	}
	cell.RemoveRoads()
	s.finishEdit(c, cell)
}

func (s *Server) removeRoad(c *gin.Context) {
	d, err := hexmap.ParseDirection(c.Param("dir"))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cellParam(c)
	if !ok {
		return
	}
	cell.RemoveRoad(d)
	s.finishEdit(c, cell)
}

// chunkParam resolves :index. s.mu must be held.
func (s *Server) chunkParam(c *gin.Context) (*hexmap.Chunk, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid chunk index: %w", err))
		return nil, false
	}
	chunk := s.grid.Chunk(i)
	if chunk == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("no chunk %d", i))
		return nil, false
	}
	return chunk, true
}

// serveCached writes a cached payload or encodes, caches and writes a new
// one. The dirty flag travels in a header since it changes without a new
// generation.
func (s *Server) serveCached(c *gin.Context, chunk *hexmap.Chunk, format, contentType string, encode func(*bytes.Buffer) error) {
	c.Header("X-Chunk-Generation", strconv.FormatUint(chunk.Generation(), 10))
	c.Header("X-Chunk-Dirty", strconv.FormatBool(chunk.Dirty()))

	key := chunkKey(chunk.Index(), chunk.Generation(), format)
	if payload, ok := s.cache.get(key); ok {
		c.Header("X-Cache", "hit")
		c.Data(http.StatusOK, contentType, payload)
		return
	}

	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	payload := buf.Bytes()
	s.cache.set(key, payload)
	c.Header("X-Cache", "miss")
	c.Data(http.StatusOK, contentType, payload)
}

func (s *Server) getChunk(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunkParam(c)
	if !ok {
		return
	}
	s.serveCached(c, chunk, "json", "application/json; charset=utf-8", func(buf *bytes.Buffer) error {
		return json.NewEncoder(buf).Encode(newChunkPayload(chunk))
	})
}

func (s *Server) getChunkOBJ(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunkParam(c)
	if !ok {
		return
	}
	s.serveCached(c, chunk, "obj", "text/plain; charset=utf-8", func(buf *bytes.Buffer) error {
		_, err := export.WriteOBJ(buf, s.grid, export.Options{Chunks: []int{chunk.Index()}})
		return err
	})
}
