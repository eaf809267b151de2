package viewer

import (
	"github.com/Faultbox/hexmap/internal/engine/camera"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/pkg/math"
)

// pickCell finds the cell a ray hits first. The ray is intersected with the
// plane of every elevation level from the top down; the first hit over a
// cell at least that high wins. Perturbation is ignored, so picks near cell
// borders may land on the neighbor.
func pickCell(grid *hexmap.Grid, ray camera.Ray) *hexmap.Cell {
	lo, hi := elevationRange(grid)
	step := grid.Metrics().ElevationStep
	for level := hi; level >= lo; level-- {
		hit, ok := ray.IntersectPlaneY(float32(level) * step)
		if !ok {
			continue
		}
		if cell := grid.CellAt(hit); cell != nil && cell.Elevation() >= level {
			return cell
		}
	}
	return nil
}

func elevationRange(grid *hexmap.Grid) (lo, hi int) {
	for i, c := range grid.Cells() {
		e := c.Elevation()
		if i == 0 || e < lo {
			lo = e
		}
		if i == 0 || e > hi {
			hi = e
		}
	}
	return lo, hi
}

// gridBounds returns the box spanned by the cell centers.
func gridBounds(grid *hexmap.Grid) (lo, hi math.Vec3) {
	for i, c := range grid.Cells() {
		p := c.Position()
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo = math.Vec3{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = math.Vec3{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}
	return lo, hi
}
