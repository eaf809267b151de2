package hexmap

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/hexmap/pkg/math"
)

// Coordinates are cube coordinates of a cell. Y is derived so that
// X + Y + Z == 0 always holds.
type Coordinates struct {
	X, Z int
}

// Y returns the derived third cube coordinate.
func (c Coordinates) Y() int {
	return -c.X - c.Z
}

// FromOffsetCoordinates converts a column/row pair of the odd-row shifted
// cell array into cube coordinates.
func FromOffsetCoordinates(x, z int) Coordinates {
	return Coordinates{X: x - floorDiv(z, 2), Z: z}
}

// Offset converts back to the column/row pair of the cell array.
func (c Coordinates) Offset() (x, z int) {
	return c.X + floorDiv(c.Z, 2), c.Z
}

// FromPosition maps a grid-local position onto the cell containing it.
// Rounding errors are repaired by recomputing the axis with the largest
// rounding error from the other two.
func FromPosition(p math.Vec3) Coordinates {
	x := float64(p.X) / (InnerRadius * 2)
	y := -x

	offset := float64(InvZ*p.Z) / (OuterRadius * 3)
	x -= offset
	y -= offset

	iX := int(gomath.Round(x))
	iY := int(gomath.Round(y))
	iZ := int(gomath.Round(-x - y))

	if iX+iY+iZ != 0 {
		dX := gomath.Abs(x - float64(iX))
		dY := gomath.Abs(y - float64(iY))
		dZ := gomath.Abs(-x - y - float64(iZ))

		if dX > dY && dX > dZ {
			iX = -iY - iZ
		} else if dZ > dY {
			iZ = -iX - iY
		}
	}

	return Coordinates{X: iX, Z: iZ}
}

// Position returns the undisturbed world position of the cell center at
// elevation zero.
func (c Coordinates) Position() math.Vec3 {
	x, z := c.Offset()
	return CellPosition(x, z)
}

// CellPosition returns the world position of the cell at column x, row z of
// the offset layout.
func CellPosition(x, z int) math.Vec3 {
	return math.Vec3{
		X: (float32(x) + float32(z)*0.5 - float32(floorDiv(z, 2))) * (InnerRadius * 2),
		Z: InvZ * float32(z) * (OuterRadius * 1.5),
	}
}

// Step returns the coordinates of the neighbor in direction d.
func (c Coordinates) Step(d Direction) Coordinates {
	switch d {
	case NE:
		return Coordinates{c.X, c.Z + 1}
	case E:
		return Coordinates{c.X + 1, c.Z}
	case SE:
		return Coordinates{c.X + 1, c.Z - 1}
	case SW:
		return Coordinates{c.X, c.Z - 1}
	case W:
		return Coordinates{c.X - 1, c.Z}
	default:
		return Coordinates{c.X - 1, c.Z + 1}
	}
}

// DistanceTo returns the number of cell steps between c and other.
func (c Coordinates) DistanceTo(other Coordinates) int {
	dx := absInt(c.X - other.X)
	dy := absInt(c.Y() - other.Y())
	dz := absInt(c.Z - other.Z)
	return max(dx, dy, dz)
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y(), c.Z)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
