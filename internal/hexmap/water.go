package hexmap

import "github.com/Faultbox/hexmap/pkg/math"

func (t *Triangulator) triangulateWater(d Direction, cell *Cell, center math.Vec3) {
	center.Y = cell.WaterSurfaceY()

	neighbor := cell.Neighbor(d)
	if neighbor != nil && !neighbor.IsUnderwater() {
		t.triangulateWaterShore(d, cell, neighbor, center)
	} else {
		t.triangulateOpenWater(d, cell, neighbor, center)
	}
}

func (t *Triangulator) triangulateOpenWater(d Direction, cell, neighbor *Cell, center math.Vec3) {
	c1 := center.Add(FirstWaterCorner(d))
	c2 := center.Add(SecondWaterCorner(d))
	t.water.AddTriangleUnperturbed(center, c1, c2)

	if d > SE || neighbor == nil {
		return
	}
	bridge := WaterBridge(d)
	e1 := c1.Add(bridge)
	e2 := c2.Add(bridge)
	t.water.AddQuadUnperturbed(c1, c2, e1, e2)

	if d <= E {
		next := cell.Neighbor(d.Next())
		if next == nil || !next.IsUnderwater() {
			return
		}
		t.water.AddTriangleUnperturbed(c2, e2, c2.Add(WaterBridge(d.Next())))
	}
}

var (
	uvShoreWater = math.Vec2{X: 0, Y: 0}
	uvShoreLand  = math.Vec2{X: 0, Y: 1}
)

// triangulateWaterShore blends the water surface of cell into the dry
// neighbor's solid edge. The shore V coordinate is 0 on the water side and 1
// on the land side.
func (t *Triangulator) triangulateWaterShore(d Direction, cell, neighbor *Cell, center math.Vec3) {
	e1 := NewEdgeVertices(center.Add(FirstWaterCorner(d)), center.Add(SecondWaterCorner(d)))
	t.water.AddTriangleUnperturbed(center, e1.V1, e1.V2)
	t.water.AddTriangleUnperturbed(center, e1.V2, e1.V3)
	t.water.AddTriangleUnperturbed(center, e1.V3, e1.V4)
	t.water.AddTriangleUnperturbed(center, e1.V4, e1.V5)

	center2 := neighbor.Position()
	center2.Y = center.Y
	e2 := NewEdgeVertices(
		center2.Add(SecondSolidCorner(d.Opposite())),
		center2.Add(FirstSolidCorner(d.Opposite())))

	if cell.HasRiverThroughEdge(d) {
		t.triangulateEstuary(e1, e2, cell.HasIncomingRiver() && cell.IncomingRiver() == d)
	} else {
		t.waterShore.AddQuadUnperturbed(e1.V1, e1.V2, e2.V1, e2.V2)
		t.waterShore.AddQuadUnperturbed(e1.V2, e1.V3, e2.V2, e2.V3)
		t.waterShore.AddQuadUnperturbed(e1.V3, e1.V4, e2.V3, e2.V4)
		t.waterShore.AddQuadUnperturbed(e1.V4, e1.V5, e2.V4, e2.V5)
		for range 4 {
			t.waterShore.AddQuadUVRect(0, 0, 0, 1)
		}
	}

	next := cell.Neighbor(d.Next())
	if next == nil {
		return
	}
	center3 := next.Position()
	center3.Y = center.Y
	var v3 math.Vec3
	far := uvShoreLand
	if next.IsUnderwater() {
		v3 = center3.Add(FirstWaterCorner(d.Previous()))
		far = uvShoreWater
	} else {
		v3 = center3.Add(FirstSolidCorner(d.Previous()))
	}
	t.waterShore.AddTriangleUnperturbed(e1.V5, e2.V5, v3)
	t.waterShore.AddTriangleUV(uvShoreWater, uvShoreLand, far)
}

// triangulateEstuary replaces the shore strip where a river meets the
// water. The second UV channel carries the flow direction, which depends on
// whether the river flows into or out of the water cell.
func (t *Triangulator) triangulateEstuary(e1, e2 EdgeVertices, incomingRiver bool) {
	t.waterShore.AddTriangleUnperturbed(e2.V1, e1.V2, e1.V1)
	t.waterShore.AddTriangleUnperturbed(e2.V5, e1.V5, e1.V4)
	t.waterShore.AddTriangleUV(uvShoreLand, uvShoreWater, uvShoreWater)
	t.waterShore.AddTriangleUV(uvShoreLand, uvShoreWater, uvShoreWater)

	t.estuaries.AddQuadUnperturbed(e2.V1, e1.V2, e2.V2, e1.V3)
	t.estuaries.AddTriangleUnperturbed(e1.V3, e2.V2, e2.V4)
	t.estuaries.AddQuadUnperturbed(e1.V3, e1.V4, e2.V4, e2.V5)

	t.estuaries.AddQuadUV(uv(0, 1), uv(0, 0), uv(1, 1), uv(0, 0))
	t.estuaries.AddTriangleUV(uv(0, 0), uv(1, 1), uv(1, 1))
	t.estuaries.AddQuadUV(uv(0, 0), uv(0, 0), uv(1, 1), uv(0, 1))

	if incomingRiver {
		t.estuaries.AddQuadUV2(uv(1.5, 1), uv(0.7, 1.15), uv(1, 0.8), uv(0.5, 1.1))
		t.estuaries.AddTriangleUV2(uv(0.5, 1.1), uv(1, 0.8), uv(0, 0.8))
		t.estuaries.AddQuadUV2(uv(0.5, 1.1), uv(0.3, 1.15), uv(0, 0.8), uv(-0.5, 1))
	} else {
		t.estuaries.AddQuadUV2(uv(-0.5, -0.2), uv(0.3, -0.35), uv(0, 0), uv(0.5, -0.3))
		t.estuaries.AddTriangleUV2(uv(0.5, -0.3), uv(0, 0), uv(1, 0))
		t.estuaries.AddQuadUV2(uv(0.5, -0.3), uv(0.7, -0.35), uv(1, 0), uv(1.5, -0.2))
	}
}

func uv(u, v float32) math.Vec2 {
	return math.Vec2{X: u, Y: v}
}
