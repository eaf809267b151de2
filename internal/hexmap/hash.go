package hexmap

import (
	"fmt"
	"math/rand/v2"

	"github.com/Faultbox/hexmap/pkg/math"
)

// Hash is a tuple of independent pseudo-random values in [0, 0.999).
type Hash struct {
	A, B, C, D, E float32
}

// HashGrid is a square lattice of precomputed hashes. Positions wrap around
// the lattice so every point of the world maps onto a stable tuple.
type HashGrid struct {
	size  int
	scale float32
	cells []Hash
}

// NewHashGrid fills a size x size lattice from seed.
func NewHashGrid(seed int64, size int, scale float32) (*HashGrid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("hash grid size %d: %w", size, ErrInvalidSize)
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	cells := make([]Hash, size*size)
	for i := range cells {
		cells[i] = Hash{
			A: rng.Float32() * 0.999,
			B: rng.Float32() * 0.999,
			C: rng.Float32() * 0.999,
			D: rng.Float32() * 0.999,
			E: rng.Float32() * 0.999,
		}
	}
	return &HashGrid{size: size, scale: scale, cells: cells}, nil
}

// Sample returns the hash at the scaled and wrapped XZ position.
func (g *HashGrid) Sample(p math.Vec3) Hash {
	x := int(p.X*g.scale) % g.size
	if x < 0 {
		x += g.size
	}
	z := int(p.Z*g.scale) % g.size
	if z < 0 {
		z += g.size
	}
	return g.cells[x+z*g.size]
}
