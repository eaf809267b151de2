// Package api exposes a grid over HTTP: cell edits, queries, refresh and
// chunk geometry. Encoded chunk payloads are cached per refresh generation.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/logger"
)

// Options configure the server.
type Options struct {
	// Workers bounds parallel chunk triangulation; 0 uses one per CPU.
	Workers int
	// AutoRefresh rebuilds dirty chunks at the end of every edit request.
	AutoRefresh bool
	// CacheMaxCost is the byte budget of the chunk payload cache.
	CacheMaxCost int64
}

// DefaultOptions returns auto-refreshing options with a 64MB cache.
func DefaultOptions() Options {
	return Options{AutoRefresh: true, CacheMaxCost: 64 << 20}
}

// Server serializes all grid access behind one mutex; the grid itself is
// not safe for concurrent use.
type Server struct {
	mu     sync.Mutex
	grid   *hexmap.Grid
	opts   Options
	cache  *chunkCache
	engine *gin.Engine
	log    *zap.Logger
}

// NewServer builds the router around grid.
func NewServer(grid *hexmap.Grid, opts Options) (*Server, error) {
	cache, err := newChunkCache(opts.CacheMaxCost)
	if err != nil {
		return nil, err
	}
	s := &Server{
		grid:  grid,
		opts:  opts,
		cache: cache,
		log:   logger.Named("api"),
	}

	e := gin.New()
	e.Use(gin.Recovery(), requestLogger(s.log))
	s.routes(e.Group("/api"))
	s.engine = e
	return s, nil
}

func (s *Server) routes(g *gin.RouterGroup) {
	g.GET("/grid", s.gridInfo)
	g.POST("/refresh", s.refresh)

	g.GET("/cells/at", s.cellAt)
	g.GET("/cells/:x/:z", s.getCell)
	g.PATCH("/cells/:x/:z", s.patchCell)
	g.POST("/cells/:x/:z/river", s.setRiver)
	g.DELETE("/cells/:x/:z/river", s.removeRiver)
	g.POST("/cells/:x/:z/roads", s.addRoad)
	g.DELETE("/cells/:x/:z/roads", s.removeRoads)
	g.DELETE("/cells/:x/:z/roads/:dir", s.removeRoad)
	g.POST("/brush", s.brush)

	g.GET("/chunks/:index", s.getChunk)
	g.GET("/chunks/:index/obj", s.getChunkOBJ)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		return nil
	}
}

// Close releases the cache.
func (s *Server) Close() {
	s.cache.Close()
}

// refreshLocked rebuilds dirty chunks. s.mu must be held.
func (s *Server) refreshLocked(ctx context.Context) (int, error) {
	workers := s.opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	return s.grid.RefreshDirtyParallel(ctx, workers)
}
