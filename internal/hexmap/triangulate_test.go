package hexmap

import (
	"context"
	"errors"
	gomath "math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/Faultbox/hexmap/pkg/math"
)

type vertexKey [3]int32

func keyOf(v math.Vec3) vertexKey {
	q := func(f float32) int32 { return int32(gomath.Round(float64(f) * 1000)) }
	return vertexKey{q(v.X), q(v.Y), q(v.Z)}
}

type edgeKey [2]vertexKey

func edgeOf(a, b math.Vec3) edgeKey {
	ka, kb := keyOf(a), keyOf(b)
	for i := range ka {
		if ka[i] != kb[i] {
			if ka[i] > kb[i] {
				ka, kb = kb, ka
			}
			break
		}
	}
	return edgeKey{ka, kb}
}

// edgeUse counts how many triangles use each edge of a mesh.
func edgeUse(g *Geometry) map[edgeKey]int {
	use := make(map[edgeKey]int)
	for i := 0; i < len(g.Indices); i += 3 {
		a := g.Vertex(int(g.Indices[i]))
		b := g.Vertex(int(g.Indices[i+1]))
		c := g.Vertex(int(g.Indices[i+2]))
		use[edgeOf(a, b)]++
		use[edgeOf(b, c)]++
		use[edgeOf(c, a)]++
	}
	return use
}

func TestFlatGridTriangleCount(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	g.RefreshDirty()

	terrain := layer(g, LayerTerrain)
	// 4 cells x 6 sectors x 4 fan triangles, 5 flat bridges of 8 triangles
	// and 2 corner triangles.
	if got, want := terrain.TriangleCount(), 96+40+2; got != want {
		t.Errorf("terrain triangles = %d, want %d", got, want)
	}
	if len(terrain.Colors) != len(terrain.Positions) {
		t.Errorf("colors %d != positions %d", len(terrain.Colors), len(terrain.Positions))
	}
	for _, l := range []Layer{LayerRivers, LayerRoads, LayerWater, LayerWaterShore, LayerEstuaries, LayerWalls} {
		if !layer(g, l).Empty() {
			t.Errorf("%v layer has %d triangles on a plain grid", l, layer(g, l).TriangleCount())
		}
	}
}

func TestFlatGridCornersAreFlat(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	for _, cell := range g.Cells() {
		for _, d := range []Direction{NE, E} {
			n, next := cell.Neighbor(d), cell.Neighbor(d.Next())
			if n == nil || next == nil {
				continue
			}
			if cell.EdgeType(d) != Flat {
				t.Errorf("%v edge %v not flat", cell.Coordinates(), d)
			}
			if rule := resolveCornerRule(cell, n, next); rule.shape != cornerFlat {
				t.Errorf("corner at %v resolves to %v", cell.Coordinates(), rule.shape)
			}
		}
	}
}

func TestFlatGridIsClosed(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		g := newTestGrid(t, n, n)
		g.RefreshDirty()
		use := edgeUse(layer(g, LayerTerrain))

		for e, count := range use {
			if count > 2 {
				t.Fatalf("%dx%d: edge %v used by %d triangles", n, n, e, count)
			}
		}

		for _, cell := range g.Cells() {
			center := cell.Position()
			for _, d := range Directions {
				e := NewEdgeVertices(center.Add(FirstSolidCorner(d)), center.Add(SecondSolidCorner(d)))
				p := e.Points()
				want := 2
				if cell.Neighbor(d) == nil {
					want = 1
				}
				for i := 0; i < 4; i++ {
					if got := use[edgeOf(p[i], p[i+1])]; got != want {
						t.Errorf("%dx%d: %v sector %v segment %d used %d times, want %d",
							n, n, cell.Coordinates(), d, i, got, want)
					}
				}
			}
		}
	}
}

func TestSlopeTerraces(t *testing.T) {
	tests := []struct {
		terraces int
		strips   int
	}{
		{terraces: 2, strips: 5},
		{terraces: 1, strips: 3},
		{terraces: 3, strips: 7},
	}
	for _, tt := range tests {
		s := DefaultSettings()
		s.TerracesPerSlope = tt.terraces
		m, err := NewMetrics(s, FlatNoise)
		if err != nil {
			t.Fatal(err)
		}
		g, err := NewGrid(m, Options{ChunkCountX: 1, ChunkCountZ: 1, ChunkSizeX: 2, ChunkSizeZ: 1})
		if err != nil {
			t.Fatal(err)
		}
		a, b := g.CellByOffset(0, 0), g.CellByOffset(1, 0)
		b.SetElevation(1)
		if a.EdgeType(E) != Slope {
			t.Fatalf("edge type = %v", a.EdgeType(E))
		}
		g.RefreshDirty()

		// Each strip is 4 quads of 2 triangles.
		if got, want := layer(g, LayerTerrain).TriangleCount(), 48+tt.strips*8; got != want {
			t.Errorf("%d terraces per slope: %d triangles, want %d", tt.terraces, got, want)
		}
	}
}

func TestCliffHasSingleStrip(t *testing.T) {
	g := newTestGrid(t, 2, 1)
	g.CellByOffset(1, 0).SetElevation(3)
	g.RefreshDirty()
	if got := layer(g, LayerTerrain).TriangleCount(); got != 48+8 {
		t.Errorf("cliff triangles = %d, want 56", got)
	}
}

func TestCornerRules(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	bottom, left, right := g.CellByOffset(0, 0), g.CellByOffset(0, 1), g.CellByOffset(1, 0)

	tests := []struct {
		b, l, r  int
		shape    cornerShape
		rotation cornerRotation
	}{
		{0, 0, 0, cornerFlat, rotateNone},
		{0, 1, 1, cornerTerraces, rotateNone},
		{0, 0, 1, cornerTerraces, rotateRight},
		{0, 1, 0, cornerTerraces, rotateLeft},
		{0, 1, 2, cornerTerracesCliff, rotateNone},
		{0, 1, 3, cornerTerracesCliff, rotateNone},
		{0, 2, 1, cornerCliffTerraces, rotateNone},
		{0, 2, 3, cornerCliffTerraces, rotateRight},
		{0, 3, 2, cornerTerracesCliff, rotateLeft},
		{0, 2, 2, cornerFlat, rotateNone},
		{0, 2, 4, cornerFlat, rotateNone},
		{0, 0, 2, cornerFlat, rotateNone},
		{0, 3, 0, cornerFlat, rotateNone},
	}
	for _, tt := range tests {
		bottom.SetElevation(tt.b)
		left.SetElevation(tt.l)
		right.SetElevation(tt.r)
		rule := resolveCornerRule(bottom, left, right)
		if rule.shape != tt.shape || rule.rotation != tt.rotation {
			t.Errorf("elevations %d/%d/%d: got %v/%d, want %v/%d",
				tt.b, tt.l, tt.r, rule.shape, rule.rotation, tt.shape, tt.rotation)
		}
	}
}

func TestCornerRulesExhaustive(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	bottom, left, right := g.CellByOffset(0, 0), g.CellByOffset(0, 1), g.CellByOffset(1, 0)

	seen := map[cornerShape]bool{}
	combos := map[[3]EdgeType]bool{}
	for l := 0; l <= 5; l++ {
		for r := 0; r <= 5; r++ {
			left.SetElevation(l)
			right.SetElevation(r)
			rule := resolveCornerRule(bottom, left, right)
			if rule.shape == cornerAcross {
				t.Fatalf("elevations 0/%d/%d left the rule unresolved", l, r)
			}
			seen[rule.shape] = true
			combos[[3]EdgeType{bottom.EdgeTypeWith(left), bottom.EdgeTypeWith(right), left.EdgeTypeWith(right)}] = true
		}
	}
	for _, s := range []cornerShape{cornerFlat, cornerTerraces, cornerTerracesCliff, cornerCliffTerraces} {
		if !seen[s] {
			t.Errorf("shape %v never selected", s)
		}
	}
	// With the bottom cell lowest, every reachable combination was covered.
	if len(combos) < 9 {
		t.Errorf("only %d edge type combinations reached", len(combos))
	}
}

func TestCornerGeometry(t *testing.T) {
	tests := []struct {
		name      string
		elevation [3]int
		triangles int
	}{
		// Triangle plus terrace quads: 1 + 3*2 + 2.
		{"terraces", [3]int{0, 1, 1}, 9},
		// Two boundary fans of 5 triangles.
		{"terraces cliff slope", [3]int{0, 1, 2}, 10},
		// One boundary fan and a closing triangle.
		{"terraces cliff cliff", [3]int{0, 1, 3}, 6},
		{"flat", [3]int{0, 2, 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 2, 2)
			// Cells 0, 2 and 1 meet at the corner triangulated from cell 0.
			g.CellByOffset(0, 0).SetElevation(tt.elevation[0])
			g.CellByOffset(0, 1).SetElevation(tt.elevation[1])
			g.CellByOffset(1, 0).SetElevation(tt.elevation[2])

			tr := newTriangulator(g.Metrics(), g.Catalog(), NewBufferPool())
			tr.terrain.Clear()
			tr.features.Clear()
			c0 := g.CellByOffset(0, 0)
			c2, c1 := c0.Neighbor(NE), c0.Neighbor(E)
			v0 := c0.Position().Add(SecondSolidCorner(NE))
			v2 := v0.Add(Bridge(NE))
			v2.Y = c2.Position().Y
			v1 := v0.Add(Bridge(E))
			v1.Y = c1.Position().Y
			tr.triangulateCorner(v0, c0, v2, c2, v1, c1)

			geo := tr.terrain.Apply()
			if geo.TriangleCount() != tt.triangles {
				t.Errorf("corner triangles = %d, want %d", geo.TriangleCount(), tt.triangles)
			}
		})
	}
}

func TestAdjacentRiverCenter(t *testing.T) {
	type flow struct {
		from *Cell
		dir  Direction
	}
	tests := []struct {
		name   string
		rivers func(center *Cell) []flow
		offset math.Vec3
	}{
		{
			name: "previous and next",
			rivers: func(c *Cell) []flow {
				return []flow{{c.Neighbor(NE), SW}, {c, SE}}
			},
			offset: SolidEdgeMiddle(E).Scale(InnerToOuter * 0.5),
		},
		{
			name: "next and second previous",
			rivers: func(c *Cell) []flow {
				return []flow{{c.Neighbor(NW), SE}, {c, SE}}
			},
			offset: FirstSolidCorner(E).Scale(0.25),
		},
		{
			name: "next and opposite",
			rivers: func(c *Cell) []flow {
				return []flow{{c.Neighbor(W), E}, {c, SE}}
			},
		},
		{
			name: "previous and second next",
			rivers: func(c *Cell) []flow {
				return []flow{{c.Neighbor(NE), SW}, {c, SW}}
			},
			offset: SecondSolidCorner(E).Scale(0.25),
		},
		{
			name: "previous and opposite",
			rivers: func(c *Cell) []flow {
				return []flow{{c.Neighbor(NE), SW}, {c, W}}
			},
		},
		{
			name: "far side only",
			rivers: func(c *Cell) []flow {
				return []flow{{c.Neighbor(NW), SE}, {c, SW}}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 3, 3)
			center := g.CellByOffset(1, 1)
			for _, f := range tt.rivers(center) {
				f.from.SetOutgoingRiver(f.dir)
				if !f.from.HasOutgoingRiver() {
					t.Fatalf("river %v from %v not set", f.dir, f.from.Coordinates())
				}
			}
			if center.HasRiverThroughEdge(E) {
				t.Fatal("sector E must be river free")
			}
			got := adjacentRiverCenter(E, center, center.Position())
			want := center.Position().Add(tt.offset)
			if !approxEqual(got, want) {
				t.Errorf("center = %v, want %v", got, want)
			}
		})
	}
}

func TestRiverGeometry(t *testing.T) {
	g := newTestGrid(t, 3, 1)
	a, b := g.CellByOffset(0, 0), g.CellByOffset(1, 0)
	a.SetOutgoingRiver(E)
	b.SetOutgoingRiver(E)
	g.RefreshDirty()

	rivers := layer(g, LayerRivers)
	// Source and mouth: 3 each; through cell: 2 sectors of 4; bridges: 2 each.
	if got := rivers.TriangleCount(); got != 18 {
		t.Errorf("river triangles = %d, want 18", got)
	}
	if len(rivers.UVs) != rivers.VertexCount()*2 {
		t.Errorf("river uvs = %d for %d vertices", len(rivers.UVs), rivers.VertexCount())
	}
	if rivers.Colors != nil {
		t.Error("rivers carry no colors")
	}

	// The channel dips to the stream bed in the middle of the river edge.
	minY := float32(0)
	terrain := layer(g, LayerTerrain)
	for i := 0; i < terrain.VertexCount(); i++ {
		minY = min(minY, terrain.Vertex(i).Y)
	}
	if minY != a.StreamBedY() {
		t.Errorf("lowest terrain vertex = %v, want stream bed %v", minY, a.StreamBedY())
	}
}

func TestRiverUVsReverse(t *testing.T) {
	g := newTestGrid(t, 1, 1)
	tr := newTriangulator(g.Metrics(), g.Catalog(), NewBufferPool())
	tr.rivers.Clear()
	tr.triangulateRiverQuad(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Z: 1}, math.Vec3{X: 1, Z: 1}, 0, 0, 0.4, true)
	tr.triangulateRiverQuad(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Z: 1}, math.Vec3{X: 1, Z: 1}, 0, 0, 0.4, false)
	geo := tr.rivers.Apply()

	want := []float32{
		1, 0.4, 0, 0.4, 1, 0.2, 0, 0.2,
		0, 0.4, 1, 0.4, 0, 0.6, 1, 0.6,
	}
	for i := range want {
		if absf32(geo.UVs[i]-want[i]) > 1e-6 {
			t.Fatalf("uvs = %v, want %v", geo.UVs, want)
		}
	}
}

func TestRoadGeometry(t *testing.T) {
	g := newTestGrid(t, 2, 1)
	g.CellByOffset(0, 0).AddRoad(E)
	g.RefreshDirty()

	roads := layer(g, LayerRoads)
	// Per cell: the road sector (segment quads plus two center triangles)
	// and a road edge triangle in each of the other five sectors. The
	// bridge adds one more segment.
	perCell := 4 + 2 + 5
	if got, want := roads.TriangleCount(), 2*perCell+4; got != want {
		t.Errorf("road triangles = %d, want %d", got, want)
	}
	for i := 0; i < len(roads.UVs); i += 2 {
		if u := roads.UVs[i]; u != 0 && u != 1 {
			t.Fatalf("road u = %v", u)
		}
		if roads.UVs[i+1] != 0 {
			t.Fatalf("road v = %v", roads.UVs[i+1])
		}
	}
}

func TestRoadInterpolators(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	c := g.CellByOffset(1, 1)
	c.AddRoad(E)
	c.AddRoad(SE)

	tests := []struct {
		d           Direction
		left, right float32
	}{
		{E, 0.5, 0.5},
		{NE, 0.25, 0.5},
		{SW, 0.5, 0.25},
		{W, 0.25, 0.25},
	}
	for _, tt := range tests {
		l, r := roadInterpolators(tt.d, c)
		if l != tt.left || r != tt.right {
			t.Errorf("%v: interpolators %v,%v want %v,%v", tt.d, l, r, tt.left, tt.right)
		}
	}
}

func TestRoadNearRiverSkipsEmptySectors(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	c := g.CellByOffset(1, 1)
	c.Neighbor(W).SetOutgoingRiver(E)
	c.SetOutgoingRiver(E)
	c.AddRoad(NE)

	// Straight river: sectors on the far bank without roads stay empty.
	if _, _, ok := roadCenterNearRiver(SW, c, c.Position()); ok {
		t.Error("sector SW across the river got road geometry")
	}
	if _, _, ok := roadCenterNearRiver(NE, c, c.Position()); !ok {
		t.Error("road sector NE got no geometry")
	}
	roadCenter, _, _ := roadCenterNearRiver(NE, c, c.Position())
	if approxEqual(roadCenter, c.Position()) {
		t.Error("road center not moved off the river")
	}
}

func TestWaterShore(t *testing.T) {
	g := newTestGrid(t, 2, 1)
	g.CellByOffset(0, 0).SetWaterLevel(1)
	g.RefreshDirty()

	water := layer(g, LayerWater)
	// The shore sector fans 4 triangles, the other five sectors one each.
	if got := water.TriangleCount(); got != 9 {
		t.Errorf("water triangles = %d, want 9", got)
	}

	shore := layer(g, LayerWaterShore)
	if got := shore.TriangleCount(); got != 8 {
		t.Fatalf("shore triangles = %d, want 8", got)
	}
	for q := 0; q < 4; q++ {
		uvs := shore.UVs[q*8 : q*8+8]
		want := []float32{0, 0, 0, 0, 0, 1, 0, 1}
		if !reflect.DeepEqual(uvs, want) {
			t.Errorf("shore quad %d uvs = %v, want %v", q, uvs, want)
		}
	}

	wantY := g.CellByOffset(0, 0).WaterSurfaceY()
	for i := 0; i < shore.VertexCount(); i++ {
		if y := shore.Vertex(i).Y; y != wantY {
			t.Fatalf("shore vertex at y=%v, want %v", y, wantY)
		}
	}
}

func TestOpenWaterBetweenFloodedCells(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	for _, c := range g.Cells() {
		c.SetWaterLevel(1)
	}
	g.RefreshDirty()

	// 24 sector triangles, 5 bridges and 2 corners.
	if got, want := layer(g, LayerWater).TriangleCount(), 24+5*2+2; got != want {
		t.Errorf("water triangles = %d, want %d", got, want)
	}
	if !layer(g, LayerWaterShore).Empty() {
		t.Error("flooded grid has shore")
	}
	// Flooded cells place no features even with density.
	g.CellByOffset(0, 0).SetPlantLevel(3)
	g.RefreshDirty()
	if len(g.Chunk(0).Features()) != 0 {
		t.Error("features placed under water")
	}
}

func TestEstuary(t *testing.T) {
	for _, incoming := range []bool{true, false} {
		g := newTestGrid(t, 2, 1)
		water, land := g.CellByOffset(0, 0), g.CellByOffset(1, 0)
		water.SetWaterLevel(1)
		if incoming {
			land.SetOutgoingRiver(W)
		} else {
			water.SetOutgoingRiver(E)
		}
		g.RefreshDirty()

		estuaries := layer(g, LayerEstuaries)
		if got := estuaries.TriangleCount(); got != 5 {
			t.Fatalf("estuary triangles = %d, want 5", got)
		}
		if len(estuaries.UV2s) != estuaries.VertexCount()*2 {
			t.Fatalf("uv2 = %d for %d vertices", len(estuaries.UV2s), estuaries.VertexCount())
		}
		first := math.Vec2{X: estuaries.UV2s[0], Y: estuaries.UV2s[1]}
		want := math.Vec2{X: -0.5, Y: -0.2}
		if incoming {
			want = math.Vec2{X: 1.5, Y: 1}
		}
		if first != want {
			t.Errorf("incoming=%v: first uv2 = %v, want %v", incoming, first, want)
		}
		// Estuaries replace the shore strip with two side triangles.
		if got := layer(g, LayerWaterShore).TriangleCount(); got != 2 {
			t.Errorf("shore triangles = %d, want 2", got)
		}
	}
}

func TestWaterfall(t *testing.T) {
	g := newTestGrid(t, 2, 1)
	lake, cliff := g.CellByOffset(0, 0), g.CellByOffset(1, 0)
	lake.SetWaterLevel(1)
	cliff.SetElevation(3)
	cliff.SetOutgoingRiver(W)
	g.RefreshDirty()

	rivers := layer(g, LayerRivers)
	// River source triangles plus the waterfall quad.
	if got := rivers.TriangleCount(); got != 3+2 {
		t.Fatalf("river triangles = %d, want 5", got)
	}
	minY := rivers.Vertex(0).Y
	for i := 1; i < rivers.VertexCount(); i++ {
		minY = min(minY, rivers.Vertex(i).Y)
	}
	if absf32(minY-lake.WaterSurfaceY()) > 1e-4 {
		t.Errorf("waterfall ends at %v, want water surface %v", minY, lake.WaterSurfaceY())
	}
}

func TestWalls(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(a, b *Cell)
		triangles int
	}{
		{"plain", func(a, b *Cell) {}, 24},
		{"road gap", func(a, b *Cell) { a.AddRoad(E) }, 16},
		{"river gap", func(a, b *Cell) { a.SetOutgoingRiver(E) }, 16},
		{"slope", func(a, b *Cell) { b.SetElevation(1) }, 24},
		{"cliff", func(a, b *Cell) { b.SetElevation(2) }, 0},
		{"underwater", func(a, b *Cell) { b.SetWaterLevel(1) }, 0},
		{"both walled", func(a, b *Cell) { b.SetWalled(true) }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 2, 1)
			a, b := g.CellByOffset(0, 0), g.CellByOffset(1, 0)
			a.SetWalled(true)
			tt.setup(a, b)
			g.RefreshDirty()

			walls := layer(g, LayerWalls)
			if got := walls.TriangleCount(); got != tt.triangles {
				t.Errorf("wall triangles = %d, want %d", got, tt.triangles)
			}
		})
	}
}

func TestWallHeight(t *testing.T) {
	g := newTestGrid(t, 2, 1)
	g.CellByOffset(0, 0).SetWalled(true)
	g.RefreshDirty()

	walls := layer(g, LayerWalls)
	lo, hi := float32(gomath.MaxFloat32), float32(-gomath.MaxFloat32)
	for i := 0; i < walls.VertexCount(); i++ {
		y := walls.Vertex(i).Y
		lo, hi = min(lo, y), max(hi, y)
	}
	if lo != WallYOffset || hi != WallYOffset+WallHeight {
		t.Errorf("wall spans %v..%v, want %v..%v", lo, hi, WallYOffset, WallYOffset+WallHeight)
	}
}

func TestWallTowers(t *testing.T) {
	for _, threshold := range []float32{0, 1} {
		s := DefaultSettings()
		s.WallTowerThreshold = threshold
		m, err := NewMetrics(s, FlatNoise)
		if err != nil {
			t.Fatal(err)
		}
		g, err := NewGrid(m, Options{ChunkCountX: 1, ChunkCountZ: 1, ChunkSizeX: 2, ChunkSizeZ: 2})
		if err != nil {
			t.Fatal(err)
		}
		g.CellByOffset(0, 0).SetWalled(true)
		g.RefreshDirty()

		towers := 0
		for _, f := range g.Chunk(0).Features() {
			if f.Prefab.Category == Tower {
				towers++
			}
		}
		want := 0
		if threshold == 1 {
			want = 1
		}
		if towers != want {
			t.Errorf("threshold %v: %d towers, want %d", threshold, towers, want)
		}
	}
}

func TestApplyCopiesBuffers(t *testing.T) {
	g := newTestGrid(t, 2, 2)
	g.RefreshDirty()

	before := *layer(g, LayerTerrain)
	saved := append([]float32(nil), before.Positions...)

	g.CellByOffset(0, 0).SetElevation(2)
	g.RefreshDirty()

	if !reflect.DeepEqual(before.Positions, saved) {
		t.Error("refresh wrote into geometry handed out earlier")
	}
	if reflect.DeepEqual(layer(g, LayerTerrain).Positions, saved) {
		t.Error("geometry did not change after an edit")
	}
}

func TestBufferPoolResets(t *testing.T) {
	p := NewBufferPool()
	b := p.get(LayerRivers)
	b.positions = append(b.positions, 1, 2, 3)
	b.indices = append(b.indices, 0)
	p.put(LayerRivers, b)

	again := p.get(LayerRivers)
	if len(again.positions) != 0 || len(again.indices) != 0 || len(again.uvs) != 0 {
		t.Error("pooled buffers not reset")
	}
}

func TestLayerFormats(t *testing.T) {
	if !LayerTerrain.Format().Colors || LayerTerrain.Format().UVs {
		t.Error("terrain carries colors only")
	}
	if !LayerEstuaries.Format().UV2s {
		t.Error("estuaries carry a second uv channel")
	}
	if LayerWalls.String() != "walls" || Layer(42).String() != "unknown" {
		t.Error("layer names")
	}
	for _, l := range Layers {
		if got, ok := ParseLayer(l.String()); !ok || got != l {
			t.Errorf("ParseLayer(%q) = %v, %v", l.String(), got, ok)
		}
	}
	if _, ok := ParseLayer("lava"); ok {
		t.Error("parsed an unknown layer")
	}
}

func editRandomly(g *Grid, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	cells := g.Cells()
	for i := 0; i < 400; i++ {
		c := cells[rng.IntN(len(cells))]
		d := Directions[rng.IntN(6)]
		switch rng.IntN(8) {
		case 0, 1:
			c.SetElevation(rng.IntN(4))
		case 2:
			c.SetWaterLevel(rng.IntN(3))
		case 3:
			c.SetOutgoingRiver(d)
		case 4:
			c.AddRoad(d)
		case 5:
			c.SetWalled(rng.IntN(2) == 0)
		case 6:
			c.SetUrbanLevel(rng.IntN(4))
			c.SetPlantLevel(rng.IntN(4))
		case 7:
			c.SetColor(math.Color{R: rng.Float32(), G: rng.Float32(), B: rng.Float32()})
		}
	}
}

func newWavyGrid(t *testing.T) *Grid {
	t.Helper()
	m, err := NewMetrics(DefaultSettings(), waveNoise{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGrid(m, Options{ChunkCountX: 3, ChunkCountZ: 2, DefaultColor: grass})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// waveNoise is a smooth deterministic noise source.
type waveNoise struct{}

func (waveNoise) Sample(u, v float32) math.Vec4 {
	s := func(x float64) float32 { return float32(0.5 + 0.5*gomath.Sin(x)) }
	return math.Vec4{
		X: s(float64(u) * 40),
		Y: s(float64(v)*37 + 1),
		Z: s(float64(u+v) * 29),
		W: s(float64(u-v) * 23),
	}
}

func TestParallelRefreshMatchesSerial(t *testing.T) {
	serial := newWavyGrid(t)
	parallel := newWavyGrid(t)
	editRandomly(serial, 42)
	editRandomly(parallel, 42)

	if n := serial.RefreshDirty(); n != len(serial.Chunks()) {
		t.Fatalf("serial refreshed %d chunks", n)
	}
	n, err := parallel.RefreshDirtyParallel(context.Background(), 4)
	if err != nil {
		t.Fatalf("parallel refresh: %v", err)
	}
	if n != len(parallel.Chunks()) {
		t.Fatalf("parallel refreshed %d chunks", n)
	}

	for i, c := range serial.Chunks() {
		p := parallel.Chunk(i)
		for _, l := range Layers {
			if !reflect.DeepEqual(c.Geometry(l), p.Geometry(l)) {
				t.Errorf("chunk %d layer %v differs", i, l)
			}
		}
		if !reflect.DeepEqual(c.Features(), p.Features()) {
			t.Errorf("chunk %d features differ", i)
		}
	}
}

func TestParallelRefreshCancelled(t *testing.T) {
	g := newWavyGrid(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := g.RefreshDirtyParallel(ctx, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n != 0 || g.DirtyChunks() != len(g.Chunks()) {
		t.Errorf("refreshed %d chunks, %d still dirty", n, g.DirtyChunks())
	}
}

func TestSinkOrder(t *testing.T) {
	g := newWavyGrid(t)
	var got []int
	g.Subscribe(ChunkSinkFunc(func(c *Chunk) { got = append(got, c.Index()) }))

	if _, err := g.RefreshDirtyParallel(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sink order = %v, want %v", got, want)
	}

	got = nil
	g.CellByOffset(0, 0).SetElevation(1)
	g.RefreshDirty()
	if !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("after one edit sink saw %v", got)
	}
	if g.Chunk(0).Generation() != 2 || g.Chunk(1).Generation() != 1 {
		t.Errorf("generations %d, %d", g.Chunk(0).Generation(), g.Chunk(1).Generation())
	}
}

func TestTriangulationIsRepeatable(t *testing.T) {
	g := newWavyGrid(t)
	editRandomly(g, 7)
	g.RefreshDirty()

	first := make([][LayerCount]Geometry, len(g.Chunks()))
	for i, c := range g.Chunks() {
		for _, l := range Layers {
			first[i][l] = *c.Geometry(l)
		}
	}
	g.RefreshAll()
	for i, c := range g.Chunks() {
		for _, l := range Layers {
			if !reflect.DeepEqual(first[i][l], *c.Geometry(l)) {
				t.Errorf("chunk %d layer %v changed between identical refreshes", i, l)
			}
		}
	}
}
