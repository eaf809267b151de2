package hexmap

import "github.com/Faultbox/hexmap/pkg/math"

// EdgeVertices subdivides a cell edge into five points. It is a value type;
// copies are independent.
type EdgeVertices struct {
	V1, V2, V3, V4, V5 math.Vec3
}

// NewEdgeVertices splits the edge into four equal segments.
func NewEdgeVertices(corner1, corner2 math.Vec3) EdgeVertices {
	return EdgeVertices{
		V1: corner1,
		V2: corner1.Lerp(corner2, 0.25),
		V3: corner1.Lerp(corner2, 0.5),
		V4: corner1.Lerp(corner2, 0.75),
		V5: corner2,
	}
}

// NewEdgeVerticesStep places V2 and V4 at outerStep from the ends.
func NewEdgeVerticesStep(corner1, corner2 math.Vec3, outerStep float32) EdgeVertices {
	return EdgeVertices{
		V1: corner1,
		V2: corner1.Lerp(corner2, outerStep),
		V3: corner1.Lerp(corner2, 0.5),
		V4: corner1.Lerp(corner2, 1-outerStep),
		V5: corner2,
	}
}

// TerraceLerpEdge interpolates every vertex of a towards b at the terrace step.
func (m *Metrics) TerraceLerpEdge(a, b EdgeVertices, step int) EdgeVertices {
	return EdgeVertices{
		V1: m.TerraceLerp(a.V1, b.V1, step),
		V2: m.TerraceLerp(a.V2, b.V2, step),
		V3: m.TerraceLerp(a.V3, b.V3, step),
		V4: m.TerraceLerp(a.V4, b.V4, step),
		V5: m.TerraceLerp(a.V5, b.V5, step),
	}
}

// Points returns the vertices in order.
func (e EdgeVertices) Points() [5]math.Vec3 {
	return [5]math.Vec3{e.V1, e.V2, e.V3, e.V4, e.V5}
}
