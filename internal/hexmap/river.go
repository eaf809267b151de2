package hexmap

import "github.com/Faultbox/hexmap/pkg/math"

func (t *Triangulator) triangulateWithRiverBeginOrEnd(cell *Cell, center math.Vec3, e EdgeVertices) {
	m := NewEdgeVertices(center.Lerp(e.V1, 0.5), center.Lerp(e.V5, 0.5))
	m.V3.Y = e.V3.Y

	t.triangulateEdgeStrip(m, cell.Color(), e, cell.Color(), false)
	t.triangulateEdgeFan(center, m, cell.Color())

	if cell.IsUnderwater() {
		return
	}
	reversed := cell.HasIncomingRiver()
	t.triangulateRiverQuad(m.V2, m.V4, e.V2, e.V4, cell.RiverSurfaceY(), cell.RiverSurfaceY(), 0.6, reversed)

	y := cell.RiverSurfaceY()
	center.Y, m.V2.Y, m.V4.Y = y, y, y
	t.rivers.AddTriangle(center, m.V2, m.V4)
	if reversed {
		t.rivers.AddTriangleUV(math.Vec2{X: 0.5, Y: 0.4}, math.Vec2{X: 1, Y: 0.2}, math.Vec2{X: 0, Y: 0.2})
	} else {
		t.rivers.AddTriangleUV(math.Vec2{X: 0.5, Y: 0.4}, math.Vec2{X: 0, Y: 0.6}, math.Vec2{X: 1, Y: 0.6})
	}
}

// riverCenters splits the cell center into the two banks of a river that
// flows through edge d.
func riverCenters(d Direction, cell *Cell, center math.Vec3, e EdgeVertices) (centerL, centerR math.Vec3) {
	switch {
	case cell.HasRiverThroughEdge(d.Opposite()):
		centerL = center.Add(FirstSolidCorner(d.Previous()).Scale(0.25))
		centerR = center.Add(SecondSolidCorner(d.Next()).Scale(0.25))
	case cell.HasRiverThroughEdge(d.Next()):
		centerL = center
		centerR = center.Lerp(e.V5, 2.0/3.0)
	case cell.HasRiverThroughEdge(d.Previous()):
		centerL = center.Lerp(e.V1, 2.0/3.0)
		centerR = center
	case cell.HasRiverThroughEdge(d.Next2()):
		centerL = center
		centerR = center.Add(SolidEdgeMiddle(d.Next()).Scale(0.5 * InnerToOuter))
	default:
		centerL = center.Add(SolidEdgeMiddle(d.Previous()).Scale(0.5 * InnerToOuter))
		centerR = center
	}
	return centerL, centerR
}

func (t *Triangulator) triangulateWithRiver(d Direction, cell *Cell, center math.Vec3, e EdgeVertices) {
	centerL, centerR := riverCenters(d, cell, center, e)
	center = centerL.Lerp(centerR, 0.5)

	m := NewEdgeVerticesStep(centerL.Lerp(e.V1, 0.5), centerR.Lerp(e.V5, 0.5), 1.0/6.0)
	m.V3.Y = e.V3.Y
	center.Y = e.V3.Y

	color := cell.Color()
	t.triangulateEdgeStrip(m, color, e, color, false)

	t.terrain.AddTriangle(centerL, m.V1, m.V2)
	t.terrain.AddTriangleColor(color)
	t.terrain.AddQuad(centerL, center, m.V2, m.V3)
	t.terrain.AddQuadColor(color)
	t.terrain.AddQuad(center, centerR, m.V3, m.V4)
	t.terrain.AddQuadColor(color)
	t.terrain.AddTriangle(centerR, m.V4, m.V5)
	t.terrain.AddTriangleColor(color)

	if cell.IsUnderwater() {
		return
	}
	reversed := cell.HasIncomingRiver() && cell.IncomingRiver() == d
	y := cell.RiverSurfaceY()
	t.triangulateRiverQuad(centerL, centerR, m.V2, m.V4, y, y, 0.4, reversed)
	t.triangulateRiverQuad(m.V2, m.V4, e.V2, e.V4, y, y, 0.6, reversed)
}

// adjacentRiverCenter pulls the fan center of a riverless sector away from
// the river channel.
func adjacentRiverCenter(d Direction, cell *Cell, center math.Vec3) math.Vec3 {
	if cell.HasRiverThroughEdge(d.Next()) {
		if cell.HasRiverThroughEdge(d.Previous()) {
			return center.Add(SolidEdgeMiddle(d).Scale(InnerToOuter * 0.5))
		}
		if cell.HasRiverThroughEdge(d.Previous2()) {
			return center.Add(FirstSolidCorner(d).Scale(0.25))
		}
	} else if cell.HasRiverThroughEdge(d.Previous()) && cell.HasRiverThroughEdge(d.Next2()) {
		return center.Add(SecondSolidCorner(d).Scale(0.25))
	}
	return center
}

func (t *Triangulator) triangulateAdjacentToRiver(d Direction, cell *Cell, center math.Vec3, e EdgeVertices) {
	if cell.HasRoads() {
		t.triangulateRoadAdjacentToRiver(d, cell, center, e)
	}

	center = adjacentRiverCenter(d, cell, center)
	m := NewEdgeVertices(center.Lerp(e.V1, 0.5), center.Lerp(e.V5, 0.5))

	t.triangulateEdgeStrip(m, cell.Color(), e, cell.Color(), false)
	t.triangulateEdgeFan(center, m, cell.Color())

	if !cell.IsUnderwater() && !cell.HasRoadThroughEdge(d) {
		t.features.AddFeature(cell, sectorCentroid(center, e))
	}
}

// triangulateRiverQuad emits a river surface quad from y1 at the near edge
// to y2 at the far edge. v is the V coordinate of the near edge; a reversed
// river runs its UVs the other way.
func (t *Triangulator) triangulateRiverQuad(v1, v2, v3, v4 math.Vec3, y1, y2, v float32, reversed bool) {
	v1.Y, v2.Y = y1, y1
	v3.Y, v4.Y = y2, y2
	t.rivers.AddQuad(v1, v2, v3, v4)
	if reversed {
		t.rivers.AddQuadUVRect(1, 0, 0.8-v, 0.6-v)
	} else {
		t.rivers.AddQuadUVRect(0, 1, v, v+0.2)
	}
}

func (t *Triangulator) triangulateRiverConnection(d Direction, cell, neighbor *Cell, e1, e2 EdgeVertices) {
	switch {
	case !cell.IsUnderwater() && !neighbor.IsUnderwater():
		reversed := cell.HasIncomingRiver() && cell.IncomingRiver() == d
		t.triangulateRiverQuad(e1.V2, e1.V4, e2.V2, e2.V4,
			cell.RiverSurfaceY(), neighbor.RiverSurfaceY(), 0.8, reversed)
	case !cell.IsUnderwater() && cell.Elevation() > neighbor.WaterLevel():
		t.triangulateWaterfallInWater(e1.V2, e1.V4, e2.V2, e2.V4,
			cell.RiverSurfaceY(), neighbor.RiverSurfaceY(), neighbor.WaterSurfaceY())
	case cell.IsUnderwater() && !neighbor.IsUnderwater() && neighbor.Elevation() > cell.WaterLevel():
		t.triangulateWaterfallInWater(e2.V4, e2.V2, e1.V4, e1.V2,
			neighbor.RiverSurfaceY(), cell.RiverSurfaceY(), cell.WaterSurfaceY())
	}
}

// triangulateWaterfallInWater clips a waterfall at the surface of the water
// it falls into. The corners are perturbed before clipping so the cut stays
// level.
func (t *Triangulator) triangulateWaterfallInWater(v1, v2, v3, v4 math.Vec3, y1, y2, waterY float32) {
	m := t.metrics
	v1.Y, v2.Y = y1, y1
	v3.Y, v4.Y = y2, y2
	v1, v2, v3, v4 = m.Perturb(v1), m.Perturb(v2), m.Perturb(v3), m.Perturb(v4)

	f := (waterY - y2) / (y1 - y2)
	v3 = v3.Lerp(v1, f)
	v4 = v4.Lerp(v2, f)
	t.rivers.AddQuadUnperturbed(v1, v2, v3, v4)
	t.rivers.AddQuadUVRect(0, 1, 0.8, 1)
}
