// Package mapgen fills a grid with a procedural starting map using layered
// simplex noise. All changes go through the public cell setters, so the
// grid's river and road rules hold for generated maps as for edited ones.
package mapgen

import (
	"math/rand/v2"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/pkg/math"
)

// Options hold generation parameters.
type Options struct {
	Seed         int64
	MinElevation int
	MaxElevation int
	WaterLevel   int // cells below this level are flooded
	Frequency    float64
	Octaves      int
	Persistence  float64
	Rivers       int // number of river sources to try
	MaxRiverLen  int
	MaxRoadLen   int // longest road between two towns, in cells
}

// DefaultOptions returns a small island-ish landscape.
func DefaultOptions() Options {
	return Options{
		Seed:         42,
		MinElevation: 0,
		MaxElevation: 6,
		WaterLevel:   2,
		Frequency:    0.08,
		Octaves:      4,
		Persistence:  0.5,
		Rivers:       6,
		MaxRiverLen:  24,
		MaxRoadLen:   12,
	}
}

// Summary describes a generated map.
type Summary struct {
	Land       int
	Underwater int
	Rivers     int
	RiverCells int
	Roads      int
	Walled     int
}

// Biome colors, by elevation band.
var (
	ColorSeabed   = math.HexColor(0xe6d38c)
	ColorLowland  = math.HexColor(0x5fa04e)
	ColorHighland = math.HexColor(0x3d7a3a)
	ColorRock     = math.HexColor(0x8c8478)
	ColorSnow     = math.HexColor(0xf2f2f2)
)

// Generate overwrites elevation, water, color, feature levels and walls of
// every cell and traces rivers downhill. The same options always produce the
// same map. Chunks are only marked dirty; refreshing is up to the caller.
func Generate(g *hexmap.Grid, opts Options) Summary {
	if opts.MaxElevation < opts.MinElevation {
		opts.MaxElevation = opts.MinElevation
	}
	if opts.Octaves < 1 {
		opts.Octaves = 1
	}

	elevNoise := opensimplex.NewNormalized(opts.Seed)
	moistNoise := opensimplex.NewNormalized(opts.Seed + 1)
	urbanNoise := opensimplex.NewNormalized(opts.Seed + 2)

	// Clear previous state first so rivers from an earlier run never block
	// elevation changes.
	for _, cell := range g.Cells() {
		cell.RemoveRiver()
		cell.RemoveRoads()
	}

	span := float64(opts.MaxElevation - opts.MinElevation)
	var sum Summary
	for _, cell := range g.Cells() {
		x, z := cell.Coordinates().Offset()
		fx := float64(x) + 0.5*float64(z&1)
		fz := float64(z) * 0.866

		e := octaveNoise(elevNoise, fx, fz, opts)
		elevation := opts.MinElevation + int(e*span+0.5)
		cell.SetElevation(elevation)
		cell.SetWaterLevel(opts.WaterLevel)
		cell.SetColor(biomeColor(elevation, opts))

		if cell.IsUnderwater() {
			cell.SetUrbanLevel(0)
			cell.SetFarmLevel(0)
			cell.SetPlantLevel(0)
			cell.SetWalled(false)
			sum.Underwater++
			continue
		}
		sum.Land++

		moisture := octaveNoise(moistNoise, fx, fz, opts)
		urban := octaveNoise(urbanNoise, fx*2, fz*2, opts)
		cell.SetPlantLevel(level(moisture, 0.45))
		lowland := elevation <= opts.WaterLevel+1
		if lowland {
			cell.SetFarmLevel(level(1-moisture, 0.4))
		} else {
			cell.SetFarmLevel(0)
		}
		urbanLevel := level(urban, 0.55)
		cell.SetUrbanLevel(urbanLevel)
		walled := urbanLevel >= 2
		cell.SetWalled(walled)
		if walled {
			sum.Walled++
		}
	}

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), 0x6d6170))
	sum.Rivers, sum.RiverCells = traceRivers(g, rng, opts)
	sum.Roads = connectSettlements(g, opts.MaxRoadLen)

	logger.Info("map generated",
		zap.Int64("seed", opts.Seed),
		zap.Int("land", sum.Land),
		zap.Int("underwater", sum.Underwater),
		zap.Int("rivers", sum.Rivers),
		zap.Int("roads", sum.Roads),
		zap.Int("walled", sum.Walled))
	return sum
}

// octaveNoise layers frequencies and returns a value in [0,1].
func octaveNoise(n opensimplex.Noise, x, y float64, opts Options) float64 {
	total, amplitude, norm := 0.0, 1.0, 0.0
	freq := opts.Frequency
	for range opts.Octaves {
		total += n.Eval2(x*freq, y*freq) * amplitude
		norm += amplitude
		amplitude *= opts.Persistence
		freq *= 2
	}
	return min(max(total/norm, 0), 1)
}

// level maps v above threshold onto feature levels 1..3.
func level(v, threshold float64) int {
	if v < threshold {
		return 0
	}
	l := 1 + int((v-threshold)/(1-threshold)*hexmap.MaxFeatureLevel)
	return min(l, hexmap.MaxFeatureLevel)
}

func biomeColor(elevation int, opts Options) math.Color {
	switch d := elevation - opts.WaterLevel; {
	case d < 0:
		return ColorSeabed
	case d <= 1:
		return ColorLowland
	case d <= 2:
		return ColorHighland
	case elevation < opts.MaxElevation:
		return ColorRock
	default:
		return ColorSnow
	}
}

// traceRivers starts rivers on the highest dry cells and follows the
// lowest neighbor until water or a dead end is reached.
func traceRivers(g *hexmap.Grid, rng *rand.Rand, opts Options) (rivers, cells int) {
	var sources []*hexmap.Cell
	for _, cell := range g.Cells() {
		if !cell.IsUnderwater() && cell.Elevation() > opts.WaterLevel {
			sources = append(sources, cell)
		}
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Elevation() > sources[j].Elevation()
	})
	// Shuffle within the upper half so rivers do not all start on one ridge.
	top := sources[:len(sources)/2]
	rng.Shuffle(len(top), func(i, j int) { top[i], top[j] = top[j], top[i] })

	for _, src := range sources {
		if rivers >= opts.Rivers {
			break
		}
		if src.HasRiver() {
			continue
		}
		if n := traceRiver(src, opts.MaxRiverLen); n > 0 {
			rivers++
			cells += n
		}
	}
	return rivers, cells
}

func traceRiver(cell *hexmap.Cell, maxLen int) int {
	length := 0
	for length < maxLen {
		next, d, ok := lowestNeighbor(cell)
		if !ok {
			break
		}
		cell.SetOutgoingRiver(d)
		if !cell.HasOutgoingRiver() {
			break
		}
		length++
		if next.IsUnderwater() {
			break
		}
		cell = next
	}
	return length
}

// lowestNeighbor picks the lowest reachable neighbor that is not yet part
// of a river. Ties keep the first direction.
func lowestNeighbor(cell *hexmap.Cell) (*hexmap.Cell, hexmap.Direction, bool) {
	var (
		best    *hexmap.Cell
		bestDir hexmap.Direction
	)
	for _, d := range hexmap.Directions {
		n := cell.Neighbor(d)
		if n == nil || n.HasRiver() || n.Elevation() > cell.Elevation() {
			continue
		}
		if best == nil || n.Elevation() < best.Elevation() {
			best, bestDir = n, d
		}
	}
	return best, bestDir, best != nil
}

// connectSettlements lays roads between neighboring urban cells, then links
// every town (urban level 2 or more) to its nearest other town along the
// cheapest route. It returns the number of road edges added.
func connectSettlements(g *hexmap.Grid, maxLen int) int {
	roads := 0
	var towns []*hexmap.Cell
	for _, cell := range g.Cells() {
		if cell.UrbanLevel() == 0 {
			continue
		}
		if cell.UrbanLevel() >= 2 {
			towns = append(towns, cell)
		}
		for _, d := range []hexmap.Direction{hexmap.NE, hexmap.E, hexmap.SE} {
			n := cell.Neighbor(d)
			if n == nil || n.UrbanLevel() == 0 {
				continue
			}
			cell.AddRoad(d)
			if cell.HasRoadThroughEdge(d) {
				roads++
			}
		}
	}

	for _, town := range towns {
		other := nearestTown(town, towns, maxLen)
		if other == nil {
			continue
		}
		roads += layRoad(findRoadPath(town, other, maxLen))
	}
	return roads
}

// nearestTown returns the closest other town within maxLen steps, lowest
// index first on ties.
func nearestTown(town *hexmap.Cell, towns []*hexmap.Cell, maxLen int) *hexmap.Cell {
	var best *hexmap.Cell
	bestDist := maxLen + 1
	for _, t := range towns {
		if t == town {
			continue
		}
		if d := town.Coordinates().DistanceTo(t.Coordinates()); d > 1 && d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}
