package mapgen

import (
	"testing"

	"github.com/Faultbox/hexmap/internal/hexmap"
)

func TestFindRoadPathStraight(t *testing.T) {
	g := newGrid(t)
	start := g.CellByOffset(1, 4)
	goal := g.CellByOffset(6, 4)

	path := findRoadPath(start, goal, 20)
	if len(path) != 6 {
		t.Fatalf("path length = %d, want 6", len(path))
	}
	if path[0] != start || path[len(path)-1] != goal {
		t.Error("path should include both ends")
	}
	for i := 1; i < len(path); i++ {
		if _, ok := path[i-1].DirectionTo(path[i]); !ok {
			t.Fatalf("step %d is not between neighbors", i)
		}
	}
}

func TestFindRoadPathAvoidsCliffs(t *testing.T) {
	g := newGrid(t)
	// a wall of cliffs across column 4, open at the top row
	for z := 1; z < g.CellCountZ(); z++ {
		g.CellByOffset(4, z).SetElevation(3)
	}
	start := g.CellByOffset(2, 6)
	goal := g.CellByOffset(6, 6)

	path := findRoadPath(start, goal, 40)
	if path == nil {
		t.Fatal("expected a detour")
	}
	for i := 1; i < len(path); i++ {
		d, _ := path[i-1].DirectionTo(path[i])
		if path[i-1].ElevationDifference(d) > 1 {
			t.Fatalf("path climbs a cliff at %v", path[i-1].Coordinates())
		}
	}
	if len(path) <= 5 {
		t.Errorf("detour of %d cells is too short to go around", len(path))
	}
}

func TestFindRoadPathLimits(t *testing.T) {
	g := newGrid(t)
	start := g.CellByOffset(0, 0)
	goal := g.CellByOffset(14, 9)

	if path := findRoadPath(start, goal, 3); path != nil {
		t.Errorf("path of %d cells exceeds the step limit", len(path))
	}
	if path := findRoadPath(start, start, 10); path != nil {
		t.Error("path to self should be nil")
	}

	goal.SetWaterLevel(1)
	if path := findRoadPath(start, goal, 100); path != nil {
		t.Error("underwater goal should be unreachable")
	}
}

func TestLayRoad(t *testing.T) {
	g := newGrid(t)
	path := findRoadPath(g.CellByOffset(1, 2), g.CellByOffset(5, 2), 10)

	if n := layRoad(path); n != len(path)-1 {
		t.Errorf("laid %d edges, want %d", n, len(path)-1)
	}
	for i := 1; i < len(path); i++ {
		d, _ := path[i-1].DirectionTo(path[i])
		if !path[i-1].HasRoadThroughEdge(d) {
			t.Errorf("missing road at step %d", i)
		}
	}
	if n := layRoad(path); n != 0 {
		t.Errorf("relaying an existing road added %d edges", n)
	}
}

func TestConnectSettlementsLinksTowns(t *testing.T) {
	g := newGrid(t)
	a := g.CellByOffset(2, 3)
	b := g.CellByOffset(8, 3)
	a.SetUrbanLevel(2)
	b.SetUrbanLevel(2)

	if roads := connectSettlements(g, 12); roads != 6 {
		t.Errorf("roads = %d, want 6", roads)
	}
	if !a.HasRoads() || !b.HasRoads() {
		t.Error("both towns should have roads")
	}
}

func TestNearestTown(t *testing.T) {
	g := newGrid(t)
	town := g.CellByOffset(5, 5)
	near := g.CellByOffset(8, 5)
	far := g.CellByOffset(13, 5)
	adjacent := town.Neighbor(hexmap.E)
	towns := []*hexmap.Cell{town, far, adjacent, near}

	if got := nearestTown(town, towns, 12); got != near {
		t.Errorf("nearest = %v, want %v", got.Coordinates(), near.Coordinates())
	}
	if got := nearestTown(town, towns, 2); got != nil {
		t.Errorf("expected no town within 2 steps, got %v", got.Coordinates())
	}
}
