package hexmap

import "github.com/Faultbox/hexmap/pkg/math"

var (
	uvRoadCenter = math.Vec2{X: 1, Y: 0}
	uvRoadEdge   = math.Vec2{X: 0, Y: 0}
)

// roadInterpolators returns how far towards the left and right solid
// corners the road reaches inside sector d.
func roadInterpolators(d Direction, cell *Cell) (left, right float32) {
	if cell.HasRoadThroughEdge(d) {
		return 0.5, 0.5
	}
	left, right = 0.25, 0.25
	if cell.HasRoadThroughEdge(d.Previous()) {
		left = 0.5
	}
	if cell.HasRoadThroughEdge(d.Next()) {
		right = 0.5
	}
	return left, right
}

func (t *Triangulator) triangulateRoad(center, mL, mR math.Vec3, e EdgeVertices, hasRoadThroughCellEdge bool) {
	if !hasRoadThroughCellEdge {
		t.triangulateRoadEdge(center, mL, mR)
		return
	}
	mC := mL.Lerp(mR, 0.5)
	t.triangulateRoadSegment(mL, mC, mR, e.V2, e.V3, e.V4)
	t.roads.AddTriangle(center, mL, mC)
	t.roads.AddTriangle(center, mC, mR)
	t.roads.AddTriangleUV(uvRoadCenter, uvRoadEdge, uvRoadCenter)
	t.roads.AddTriangleUV(uvRoadCenter, uvRoadCenter, uvRoadEdge)
}

func (t *Triangulator) triangulateRoadEdge(center, mL, mR math.Vec3) {
	t.roads.AddTriangle(center, mL, mR)
	t.roads.AddTriangleUV(uvRoadCenter, uvRoadEdge, uvRoadEdge)
}

// triangulateRoadSegment emits two quads whose U runs 0 at the road sides
// and 1 along the middle line v2-v5.
func (t *Triangulator) triangulateRoadSegment(v1, v2, v3, v4, v5, v6 math.Vec3) {
	t.roads.AddQuad(v1, v2, v4, v5)
	t.roads.AddQuad(v2, v3, v5, v6)
	t.roads.AddQuadUVRect(0, 1, 0, 0)
	t.roads.AddQuadUVRect(1, 0, 0, 0)
}

// roadCenterNearRiver moves the road center of a river cell so that roads
// never cross the water. ok is false when sector d gets no road geometry.
func roadCenterNearRiver(d Direction, cell *Cell, center math.Vec3) (roadCenter, newCenter math.Vec3, ok bool) {
	hasRoadThroughEdge := cell.HasRoadThroughEdge(d)
	previousHasRiver := cell.HasRiverThroughEdge(d.Previous())
	nextHasRiver := cell.HasRiverThroughEdge(d.Next())
	roadCenter = center

	switch {
	case cell.HasRiverBeginOrEnd():
		roadCenter = roadCenter.Add(SolidEdgeMiddle(cell.RiverBeginOrEndDirection().Opposite()).Scale(1.0 / 3.0))

	case cell.IncomingRiver() == cell.OutgoingRiver().Opposite():
		var corner math.Vec3
		if previousHasRiver {
			if !hasRoadThroughEdge && !cell.HasRoadThroughEdge(d.Next()) {
				return roadCenter, center, false
			}
			corner = SecondSolidCorner(d)
		} else {
			if !hasRoadThroughEdge && !cell.HasRoadThroughEdge(d.Previous()) {
				return roadCenter, center, false
			}
			corner = FirstSolidCorner(d)
		}
		roadCenter = roadCenter.Add(corner.Scale(0.5))
		center = center.Add(corner.Scale(0.25))

	case cell.IncomingRiver() == cell.OutgoingRiver().Previous():
		roadCenter = roadCenter.Sub(SecondCorner(cell.IncomingRiver()).Scale(0.2))

	case cell.IncomingRiver() == cell.OutgoingRiver().Next():
		roadCenter = roadCenter.Sub(FirstCorner(cell.IncomingRiver()).Scale(0.2))

	case previousHasRiver && nextHasRiver:
		if !hasRoadThroughEdge {
			return roadCenter, center, false
		}
		offset := SolidEdgeMiddle(d).Scale(InnerToOuter)
		roadCenter = roadCenter.Add(offset.Scale(0.7))
		center = center.Add(offset.Scale(0.5))

	default:
		middle := d
		if previousHasRiver {
			middle = d.Next()
		} else if nextHasRiver {
			middle = d.Previous()
		}
		if !cell.HasRoadThroughEdge(middle) &&
			!cell.HasRoadThroughEdge(middle.Previous()) &&
			!cell.HasRoadThroughEdge(middle.Next()) {
			return roadCenter, center, false
		}
		roadCenter = roadCenter.Add(SolidEdgeMiddle(middle).Scale(0.25))
	}
	return roadCenter, center, true
}

func (t *Triangulator) triangulateRoadAdjacentToRiver(d Direction, cell *Cell, center math.Vec3, e EdgeVertices) {
	roadCenter, center, ok := roadCenterNearRiver(d, cell, center)
	if !ok {
		return
	}

	il, ir := roadInterpolators(d, cell)
	mL := roadCenter.Lerp(e.V1, il)
	mR := roadCenter.Lerp(e.V5, ir)
	t.triangulateRoad(roadCenter, mL, mR, e, cell.HasRoadThroughEdge(d))

	if cell.HasRiverThroughEdge(d.Previous()) {
		t.triangulateRoadEdge(roadCenter, center, mL)
	}
	if cell.HasRiverThroughEdge(d.Next()) {
		t.triangulateRoadEdge(roadCenter, mR, center)
	}
}
