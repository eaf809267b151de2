package hexmap

import (
	gomath "math"

	"github.com/Faultbox/hexmap/pkg/math"
)

// AddWall builds the wall along the bridge between near and far when exactly
// one of the cells is walled. Rivers and roads leave a capped gap in the
// middle. There are no walls on cliffs or in water.
func (f *FeatureManager) AddWall(near EdgeVertices, nearCell *Cell, far EdgeVertices, farCell *Cell, hasRiver, hasRoad bool) {
	if nearCell.Walled() == farCell.Walled() ||
		nearCell.IsUnderwater() || farCell.IsUnderwater() ||
		nearCell.EdgeTypeWith(farCell) == Cliff {
		return
	}

	f.addWallSegment(near.V1, far.V1, near.V2, far.V2, false)
	if hasRiver || hasRoad {
		f.addWallCap(near.V2, far.V2)
		f.addWallCap(far.V4, near.V4)
	} else {
		f.addWallSegment(near.V2, far.V2, near.V3, far.V3, false)
		f.addWallSegment(near.V3, far.V3, near.V4, far.V4, false)
	}
	f.addWallSegment(near.V4, far.V4, near.V5, far.V5, false)
}

// AddCornerWall joins the walls of three cells that meet at a corner.
func (f *FeatureManager) AddCornerWall(c1 math.Vec3, cell1 *Cell, c2 math.Vec3, cell2 *Cell, c3 math.Vec3, cell3 *Cell) {
	switch {
	case cell1.Walled() && cell2.Walled():
		if !cell3.Walled() {
			f.addCornerWallSegment(c3, cell3, c1, cell1, c2, cell2)
		}
	case cell1.Walled() && cell3.Walled():
		f.addCornerWallSegment(c2, cell2, c3, cell3, c1, cell1)
	case cell1.Walled():
		f.addCornerWallSegment(c1, cell1, c2, cell2, c3, cell3)
	case cell2.Walled() && cell3.Walled():
		f.addCornerWallSegment(c1, cell1, c2, cell2, c3, cell3)
	case cell2.Walled():
		f.addCornerWallSegment(c2, cell2, c3, cell3, c1, cell1)
	case cell3.Walled():
		f.addCornerWallSegment(c3, cell3, c1, cell1, c2, cell2)
	}
}

// addCornerWallSegment builds the corner wall around the pivot, the cell
// that differs from the other two in being walled.
func (f *FeatureManager) addCornerWallSegment(pivot math.Vec3, pivotCell *Cell, left math.Vec3, leftCell *Cell, right math.Vec3, rightCell *Cell) {
	if pivotCell.IsUnderwater() {
		return
	}

	hasLeftWall := !leftCell.IsUnderwater() && pivotCell.EdgeTypeWith(leftCell) != Cliff
	hasRightWall := !rightCell.IsUnderwater() && pivotCell.EdgeTypeWith(rightCell) != Cliff

	switch {
	case hasLeftWall && hasRightWall:
		hasTower := false
		if leftCell.Elevation() == rightCell.Elevation() {
			hash := f.metrics.SampleHashGrid(pivot.Add(left).Add(right).Scale(1.0 / 3.0))
			hasTower = hash.E < f.metrics.WallTowerThreshold
		}
		f.addWallSegment(pivot, left, pivot, right, hasTower)
	case hasLeftWall:
		if leftCell.Elevation() < rightCell.Elevation() {
			f.addWallWedge(pivot, left, right)
		} else {
			f.addWallCap(pivot, left)
		}
	case hasRightWall:
		if rightCell.Elevation() < leftCell.Elevation() {
			f.addWallWedge(right, pivot, left)
		} else {
			f.addWallCap(right, pivot)
		}
	}
}

// addWallSegment emits both faces and the top of a wall piece. The input
// points are perturbed first; the wall itself is not.
func (f *FeatureManager) addWallSegment(nearLeft, farLeft, nearRight, farRight math.Vec3, addTower bool) {
	m := f.metrics
	nearLeft, farLeft = m.Perturb(nearLeft), m.Perturb(farLeft)
	nearRight, farRight = m.Perturb(nearRight), m.Perturb(farRight)

	left := m.WallLerp(nearLeft, farLeft)
	right := m.WallLerp(nearRight, farRight)

	leftOffset := WallThicknessOffset(nearLeft, farLeft)
	rightOffset := WallThicknessOffset(nearRight, farRight)

	leftTop := left.Y + WallHeight
	rightTop := right.Y + WallHeight

	v1 := left.Sub(leftOffset)
	v2 := right.Sub(rightOffset)
	v3, v4 := v1.WithY(leftTop), v2.WithY(rightTop)
	f.walls.AddQuadUnperturbed(v1, v2, v3, v4)

	t1, t2 := v3, v4

	v1 = left.Add(leftOffset)
	v2 = right.Add(rightOffset)
	v3, v4 = v1.WithY(leftTop), v2.WithY(rightTop)
	f.walls.AddQuadUnperturbed(v2, v1, v4, v3)

	f.walls.AddQuadUnperturbed(t1, t2, v3, v4)

	if addTower {
		dir := right.Sub(left)
		f.instances = append(f.instances, FeatureInstance{
			Prefab:   f.catalog.Tower,
			Position: left.Add(right).Scale(0.5),
			Rotation: float32(gomath.Atan2(float64(-dir.Z), float64(dir.X)) * 180 / gomath.Pi),
		})
	}
}

// addWallCap closes the end of a wall.
func (f *FeatureManager) addWallCap(near, far math.Vec3) {
	m := f.metrics
	near, far = m.Perturb(near), m.Perturb(far)

	center := m.WallLerp(near, far)
	thickness := WallThicknessOffset(near, far)

	v1 := center.Sub(thickness)
	v2 := center.Add(thickness)
	top := center.Y + WallHeight
	f.walls.AddQuadUnperturbed(v1, v2, v1.WithY(top), v2.WithY(top))
}

// addWallWedge ends a wall against a cliff by sloping it into point.
func (f *FeatureManager) addWallWedge(near, far, point math.Vec3) {
	m := f.metrics
	near, far, point = m.Perturb(near), m.Perturb(far), m.Perturb(point)

	center := m.WallLerp(near, far)
	thickness := WallThicknessOffset(near, far)

	v1 := center.Sub(thickness)
	v2 := center.Add(thickness)
	top := center.Y + WallHeight
	v3, v4 := v1.WithY(top), v2.WithY(top)
	point.Y = center.Y
	pointTop := point.WithY(top)

	f.walls.AddQuadUnperturbed(v1, point, v3, pointTop)
	f.walls.AddQuadUnperturbed(point, v2, pointTop, v4)
	f.walls.AddTriangleUnperturbed(pointTop, v3, v4)
}
