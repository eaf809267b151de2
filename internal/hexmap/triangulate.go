package hexmap

import "github.com/Faultbox/hexmap/pkg/math"

// Triangulator turns the cells of one chunk into mesh geometry. A
// triangulator is used for a single pass and is not safe for concurrent use;
// parallel refreshes create one per chunk.
type Triangulator struct {
	metrics *Metrics

	terrain    *Mesh
	rivers     *Mesh
	roads      *Mesh
	water      *Mesh
	waterShore *Mesh
	estuaries  *Mesh

	features *FeatureManager
}

func newTriangulator(m *Metrics, catalog *Catalog, pool *BufferPool) *Triangulator {
	return &Triangulator{
		metrics:    m,
		terrain:    newMesh(LayerTerrain, m, pool),
		rivers:     newMesh(LayerRivers, m, pool),
		roads:      newMesh(LayerRoads, m, pool),
		water:      newMesh(LayerWater, m, pool),
		waterShore: newMesh(LayerWaterShore, m, pool),
		estuaries:  newMesh(LayerEstuaries, m, pool),
		features:   newFeatureManager(m, catalog, newMesh(LayerWalls, m, pool)),
	}
}

// Triangulate builds all layers for the cells, in cell order.
func (t *Triangulator) Triangulate(cells []*Cell) ([LayerCount]Geometry, []FeatureInstance) {
	t.terrain.Clear()
	t.rivers.Clear()
	t.roads.Clear()
	t.water.Clear()
	t.waterShore.Clear()
	t.estuaries.Clear()
	t.features.Clear()

	for _, cell := range cells {
		t.triangulateCell(cell)
	}

	var out [LayerCount]Geometry
	out[LayerTerrain] = t.terrain.Apply()
	out[LayerRivers] = t.rivers.Apply()
	out[LayerRoads] = t.roads.Apply()
	out[LayerWater] = t.water.Apply()
	out[LayerWaterShore] = t.waterShore.Apply()
	out[LayerEstuaries] = t.estuaries.Apply()
	walls, instances := t.features.Apply()
	out[LayerWalls] = walls
	return out, instances
}

func (t *Triangulator) triangulateCell(cell *Cell) {
	for _, d := range Directions {
		t.triangulateDirection(d, cell)
	}
	if !cell.IsUnderwater() && !cell.HasRiver() && !cell.HasRoads() {
		t.features.AddFeature(cell, cell.Position())
	}
}

func (t *Triangulator) triangulateDirection(d Direction, cell *Cell) {
	center := cell.Position()
	e := NewEdgeVertices(center.Add(FirstSolidCorner(d)), center.Add(SecondSolidCorner(d)))

	if cell.HasRiver() {
		if cell.HasRiverThroughEdge(d) {
			e.V3.Y = cell.StreamBedY()
			if cell.HasRiverBeginOrEnd() {
				t.triangulateWithRiverBeginOrEnd(cell, center, e)
			} else {
				t.triangulateWithRiver(d, cell, center, e)
			}
		} else {
			t.triangulateAdjacentToRiver(d, cell, center, e)
		}
	} else {
		t.triangulateWithoutRiver(d, cell, center, e)
		if !cell.IsUnderwater() && !cell.HasRoadThroughEdge(d) {
			t.features.AddFeature(cell, sectorCentroid(center, e))
		}
	}

	if d <= SE {
		t.triangulateConnection(d, cell, e)
	}
	if cell.IsUnderwater() {
		t.triangulateWater(d, cell, center)
	}
}

func sectorCentroid(center math.Vec3, e EdgeVertices) math.Vec3 {
	return center.Add(e.V1).Add(e.V5).Scale(1.0 / 3.0)
}

func (t *Triangulator) triangulateWithoutRiver(d Direction, cell *Cell, center math.Vec3, e EdgeVertices) {
	t.triangulateEdgeFan(center, e, cell.Color())
	if cell.HasRoads() {
		il, ir := roadInterpolators(d, cell)
		t.triangulateRoad(center, center.Lerp(e.V1, il), center.Lerp(e.V5, ir), e, cell.HasRoadThroughEdge(d))
	}
}

func (t *Triangulator) triangulateEdgeFan(center math.Vec3, e EdgeVertices, color math.Color) {
	t.terrain.AddTriangle(center, e.V1, e.V2)
	t.terrain.AddTriangleColor(color)
	t.terrain.AddTriangle(center, e.V2, e.V3)
	t.terrain.AddTriangleColor(color)
	t.terrain.AddTriangle(center, e.V3, e.V4)
	t.terrain.AddTriangleColor(color)
	t.terrain.AddTriangle(center, e.V4, e.V5)
	t.terrain.AddTriangleColor(color)
}

func (t *Triangulator) triangulateEdgeStrip(e1 EdgeVertices, c1 math.Color, e2 EdgeVertices, c2 math.Color, hasRoad bool) {
	t.terrain.AddQuad(e1.V1, e1.V2, e2.V1, e2.V2)
	t.terrain.AddQuadColor2(c1, c2)
	t.terrain.AddQuad(e1.V2, e1.V3, e2.V2, e2.V3)
	t.terrain.AddQuadColor2(c1, c2)
	t.terrain.AddQuad(e1.V3, e1.V4, e2.V3, e2.V4)
	t.terrain.AddQuadColor2(c1, c2)
	t.terrain.AddQuad(e1.V4, e1.V5, e2.V4, e2.V5)
	t.terrain.AddQuadColor2(c1, c2)

	if hasRoad {
		t.triangulateRoadSegment(e1.V2, e1.V3, e1.V4, e2.V2, e2.V3, e2.V4)
	}
}

// triangulateConnection fills the bridge between cell and its neighbor in
// direction d, and the corner triangle shared with the next neighbor.
func (t *Triangulator) triangulateConnection(d Direction, cell *Cell, e1 EdgeVertices) {
	neighbor := cell.Neighbor(d)
	if neighbor == nil {
		return
	}

	bridge := Bridge(d)
	bridge.Y = neighbor.Position().Y - cell.Position().Y
	e2 := NewEdgeVertices(e1.V1.Add(bridge), e1.V5.Add(bridge))

	hasRiver := cell.HasRiverThroughEdge(d)
	hasRoad := cell.HasRoadThroughEdge(d)

	if hasRiver {
		e2.V3.Y = neighbor.StreamBedY()
		t.triangulateRiverConnection(d, cell, neighbor, e1, e2)
	}

	if cell.EdgeType(d) == Slope {
		t.triangulateEdgeTerraces(e1, cell, e2, neighbor, hasRoad)
	} else {
		t.triangulateEdgeStrip(e1, cell.Color(), e2, neighbor.Color(), hasRoad)
	}

	t.features.AddWall(e1, cell, e2, neighbor, hasRiver, hasRoad)

	next := cell.Neighbor(d.Next())
	if d <= E && next != nil {
		v5 := e1.V5.Add(Bridge(d.Next()))
		v5.Y = next.Position().Y

		if cell.Elevation() <= neighbor.Elevation() {
			if cell.Elevation() <= next.Elevation() {
				t.triangulateCorner(e1.V5, cell, e2.V5, neighbor, v5, next)
			} else {
				t.triangulateCorner(v5, next, e1.V5, cell, e2.V5, neighbor)
			}
		} else if neighbor.Elevation() <= next.Elevation() {
			t.triangulateCorner(e2.V5, neighbor, v5, next, e1.V5, cell)
		} else {
			t.triangulateCorner(v5, next, e1.V5, cell, e2.V5, neighbor)
		}
	}
}

func (t *Triangulator) triangulateEdgeTerraces(begin EdgeVertices, beginCell *Cell, end EdgeVertices, endCell *Cell, hasRoad bool) {
	m := t.metrics
	e2 := m.TerraceLerpEdge(begin, end, 1)
	c2 := m.TerraceLerpColor(beginCell.Color(), endCell.Color(), 1)

	t.triangulateEdgeStrip(begin, beginCell.Color(), e2, c2, hasRoad)

	for i := 2; i < m.TerraceSteps(); i++ {
		e1, c1 := e2, c2
		e2 = m.TerraceLerpEdge(begin, end, i)
		c2 = m.TerraceLerpColor(beginCell.Color(), endCell.Color(), i)
		t.triangulateEdgeStrip(e1, c1, e2, c2, hasRoad)
	}

	t.triangulateEdgeStrip(e2, c2, end, endCell.Color(), hasRoad)
}
