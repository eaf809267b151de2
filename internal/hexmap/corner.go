package hexmap

import "github.com/Faultbox/hexmap/pkg/math"

// cornerShape names the routine that fills a three-cell corner.
type cornerShape uint8

const (
	// cornerAcross defers to the edge between the left and right cells.
	cornerAcross cornerShape = iota
	cornerTerraces
	cornerTerracesCliff
	cornerCliffTerraces
	cornerFlat
)

func (s cornerShape) String() string {
	switch s {
	case cornerTerraces:
		return "terraces"
	case cornerTerracesCliff:
		return "terraces-cliff"
	case cornerCliffTerraces:
		return "cliff-terraces"
	case cornerFlat:
		return "flat"
	default:
		return "across"
	}
}

// cornerRotation picks which corner vertex the routine treats as bottom.
type cornerRotation uint8

const (
	rotateNone  cornerRotation = iota // bottom, left, right
	rotateLeft                        // left, right, bottom
	rotateRight                       // right, bottom, left
)

type cornerRule struct {
	shape    cornerShape
	rotation cornerRotation
}

// cornerRules is indexed by the edge types bottom-left and bottom-right.
var cornerRules = [3][3]cornerRule{
	Flat: {
		Flat:  {cornerAcross, rotateNone},
		Slope: {cornerTerraces, rotateRight},
		Cliff: {cornerAcross, rotateNone},
	},
	Slope: {
		Flat:  {cornerTerraces, rotateLeft},
		Slope: {cornerTerraces, rotateNone},
		Cliff: {cornerTerracesCliff, rotateNone},
	},
	Cliff: {
		Flat:  {cornerAcross, rotateNone},
		Slope: {cornerCliffTerraces, rotateNone},
		Cliff: {cornerAcross, rotateNone},
	},
}

// resolveCornerRule returns the routine for a corner whose bottom cell is the
// lowest of the three.
func resolveCornerRule(bottom, left, right *Cell) cornerRule {
	rule := cornerRules[bottom.EdgeTypeWith(left)][bottom.EdgeTypeWith(right)]
	if rule.shape != cornerAcross {
		return rule
	}
	if left.EdgeTypeWith(right) == Slope {
		if left.Elevation() < right.Elevation() {
			return cornerRule{cornerCliffTerraces, rotateRight}
		}
		return cornerRule{cornerTerracesCliff, rotateLeft}
	}
	return cornerRule{cornerFlat, rotateNone}
}

type cornerVertex struct {
	pos  math.Vec3
	cell *Cell
}

func (t *Triangulator) triangulateCorner(bottom math.Vec3, bottomCell *Cell, left math.Vec3, leftCell *Cell, right math.Vec3, rightCell *Cell) {
	rule := resolveCornerRule(bottomCell, leftCell, rightCell)

	v := [3]cornerVertex{{bottom, bottomCell}, {left, leftCell}, {right, rightCell}}
	switch rule.rotation {
	case rotateLeft:
		v = [3]cornerVertex{v[1], v[2], v[0]}
	case rotateRight:
		v = [3]cornerVertex{v[2], v[0], v[1]}
	}

	switch rule.shape {
	case cornerTerraces:
		t.triangulateCornerTerraces(v[0].pos, v[0].cell, v[1].pos, v[1].cell, v[2].pos, v[2].cell)
	case cornerTerracesCliff:
		t.triangulateCornerTerracesCliff(v[0].pos, v[0].cell, v[1].pos, v[1].cell, v[2].pos, v[2].cell)
	case cornerCliffTerraces:
		t.triangulateCornerCliffTerraces(v[0].pos, v[0].cell, v[1].pos, v[1].cell, v[2].pos, v[2].cell)
	default:
		t.terrain.AddTriangle(bottom, left, right)
		t.terrain.AddTriangleColors(bottomCell.Color(), leftCell.Color(), rightCell.Color())
	}

	t.features.AddCornerWall(bottom, bottomCell, left, leftCell, right, rightCell)
}

func (t *Triangulator) triangulateCornerTerraces(begin math.Vec3, beginCell *Cell, left math.Vec3, leftCell *Cell, right math.Vec3, rightCell *Cell) {
	m := t.metrics
	v3 := m.TerraceLerp(begin, left, 1)
	v4 := m.TerraceLerp(begin, right, 1)
	c3 := m.TerraceLerpColor(beginCell.Color(), leftCell.Color(), 1)
	c4 := m.TerraceLerpColor(beginCell.Color(), rightCell.Color(), 1)

	t.terrain.AddTriangle(begin, v3, v4)
	t.terrain.AddTriangleColors(beginCell.Color(), c3, c4)

	for i := 2; i < m.TerraceSteps(); i++ {
		v1, v2 := v3, v4
		c1, c2 := c3, c4
		v3 = m.TerraceLerp(begin, left, i)
		v4 = m.TerraceLerp(begin, right, i)
		c3 = m.TerraceLerpColor(beginCell.Color(), leftCell.Color(), i)
		c4 = m.TerraceLerpColor(beginCell.Color(), rightCell.Color(), i)
		t.terrain.AddQuad(v1, v2, v3, v4)
		t.terrain.AddQuadColors(c1, c2, c3, c4)
	}

	t.terrain.AddQuad(v3, v4, left, right)
	t.terrain.AddQuadColors(c3, c4, leftCell.Color(), rightCell.Color())
}

// boundaryRatio is where the terraces meet the cliff. The cliff has an
// elevation difference of at least two, so it never divides by zero.
func boundaryRatio(from, to *Cell) float32 {
	b := 1 / float32(to.Elevation()-from.Elevation())
	if b < 0 {
		b = -b
	}
	return b
}

func (t *Triangulator) triangulateCornerTerracesCliff(begin math.Vec3, beginCell *Cell, left math.Vec3, leftCell *Cell, right math.Vec3, rightCell *Cell) {
	m := t.metrics
	b := boundaryRatio(beginCell, rightCell)
	boundary := m.Perturb(begin).Lerp(m.Perturb(right), b)
	boundaryColor := beginCell.Color().Lerp(rightCell.Color(), b)

	t.triangulateBoundaryTriangle(begin, beginCell, left, leftCell, boundary, boundaryColor)

	if leftCell.EdgeTypeWith(rightCell) == Slope {
		t.triangulateBoundaryTriangle(left, leftCell, right, rightCell, boundary, boundaryColor)
	} else {
		t.terrain.AddTriangleUnperturbed(m.Perturb(left), m.Perturb(right), boundary)
		t.terrain.AddTriangleColors(leftCell.Color(), rightCell.Color(), boundaryColor)
	}
}

func (t *Triangulator) triangulateCornerCliffTerraces(begin math.Vec3, beginCell *Cell, left math.Vec3, leftCell *Cell, right math.Vec3, rightCell *Cell) {
	m := t.metrics
	b := boundaryRatio(beginCell, leftCell)
	boundary := m.Perturb(begin).Lerp(m.Perturb(left), b)
	boundaryColor := beginCell.Color().Lerp(leftCell.Color(), b)

	t.triangulateBoundaryTriangle(right, rightCell, begin, beginCell, boundary, boundaryColor)

	if leftCell.EdgeTypeWith(rightCell) == Slope {
		t.triangulateBoundaryTriangle(left, leftCell, right, rightCell, boundary, boundaryColor)
	} else {
		t.terrain.AddTriangleUnperturbed(m.Perturb(left), m.Perturb(right), boundary)
		t.terrain.AddTriangleColors(leftCell.Color(), rightCell.Color(), boundaryColor)
	}
}

// triangulateBoundaryTriangle fans the terraces between begin and left
// towards an already perturbed boundary point.
func (t *Triangulator) triangulateBoundaryTriangle(begin math.Vec3, beginCell *Cell, left math.Vec3, leftCell *Cell, boundary math.Vec3, boundaryColor math.Color) {
	m := t.metrics
	v2 := m.Perturb(m.TerraceLerp(begin, left, 1))
	c2 := m.TerraceLerpColor(beginCell.Color(), leftCell.Color(), 1)

	t.terrain.AddTriangleUnperturbed(m.Perturb(begin), v2, boundary)
	t.terrain.AddTriangleColors(beginCell.Color(), c2, boundaryColor)

	for i := 2; i < m.TerraceSteps(); i++ {
		v1, c1 := v2, c2
		v2 = m.Perturb(m.TerraceLerp(begin, left, i))
		c2 = m.TerraceLerpColor(beginCell.Color(), leftCell.Color(), i)
		t.terrain.AddTriangleUnperturbed(v1, v2, boundary)
		t.terrain.AddTriangleColors(c1, c2, boundaryColor)
	}

	t.terrain.AddTriangleUnperturbed(v2, m.Perturb(left), boundary)
	t.terrain.AddTriangleColors(c2, leftCell.Color(), boundaryColor)
}
