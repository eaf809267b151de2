package api

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// chunkCache holds encoded chunk payloads keyed by chunk index and
// generation, so a payload is never served for stale geometry.
type chunkCache struct {
	c *ristretto.Cache[string, []byte]
}

func newChunkCache(maxCost int64) (*chunkCache, error) {
	if maxCost <= 0 {
		maxCost = 64 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 10000,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("chunk cache: %w", err)
	}
	return &chunkCache{c: c}, nil
}

func chunkKey(index int, generation uint64, format string) string {
	return fmt.Sprintf("%s|%d|%d", format, index, generation)
}

func (cc *chunkCache) get(key string) ([]byte, bool) {
	return cc.c.Get(key)
}

func (cc *chunkCache) set(key string, payload []byte) {
	cc.c.Set(key, payload, int64(len(payload)))
	cc.c.Wait()
}

func (cc *chunkCache) Close() {
	cc.c.Close()
}
