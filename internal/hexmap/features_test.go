package hexmap

import (
	"reflect"
	"testing"

	"github.com/Faultbox/hexmap/pkg/math"
)

func TestPickPrefabTiers(t *testing.T) {
	c := DefaultCatalog()
	tests := []struct {
		level    int
		hash     float32
		wantTier int
		wantOK   bool
	}{
		{level: 0, hash: 0.1, wantOK: false},
		{level: 1, hash: 0.3, wantTier: 2, wantOK: true},
		{level: 1, hash: 0.5, wantOK: false},
		{level: 2, hash: 0.3, wantTier: 1, wantOK: true},
		{level: 2, hash: 0.5, wantTier: 2, wantOK: true},
		{level: 3, hash: 0.3, wantTier: 0, wantOK: true},
		{level: 3, hash: 0.7, wantTier: 2, wantOK: true},
		{level: 3, hash: 0.9, wantOK: false},
	}
	for _, tt := range tests {
		p, ok := pickPrefab(&c.Urban, tt.level, tt.hash, 0.2)
		if ok != tt.wantOK {
			t.Errorf("level %d hash %v: ok = %v", tt.level, tt.hash, ok)
			continue
		}
		if ok && p.Tier != tt.wantTier {
			t.Errorf("level %d hash %v: tier = %d, want %d", tt.level, tt.hash, p.Tier, tt.wantTier)
		}
	}
}

func TestPrefabCollectionPick(t *testing.T) {
	c := DefaultCatalog().Plant[0]
	if c.Pick(0).Variant != 0 || c.Pick(0.49).Variant != 0 {
		t.Error("low choice should pick the first variant")
	}
	if c.Pick(0.5).Variant != 1 || c.Pick(0.999).Variant != 1 {
		t.Error("high choice should pick the second variant")
	}
}

func TestCatalogSizes(t *testing.T) {
	c := DefaultCatalog()
	if got := c.Urban[0].Prefabs[0].Size; got != (math.Vec3{X: 2, Y: 5, Z: 2}) {
		t.Errorf("large urban = %v", got)
	}
	for tier := range 3 {
		for _, p := range c.Farm[tier].Prefabs {
			if p.Size.Y != 0.1 {
				t.Errorf("farm %s is %v tall", p.Name, p.Size.Y)
			}
		}
	}
	if c.Tower.Category != Tower {
		t.Error("tower category")
	}
	if c.Plant[1].Prefabs[1].Name != "plant-1-1" {
		t.Errorf("name = %q", c.Plant[1].Prefabs[1].Name)
	}
}

func TestSelectFeatureDeterministic(t *testing.T) {
	g := newTestGrid(t, 1, 1)
	cell := g.CellByOffset(0, 0)
	cell.SetUrbanLevel(3)
	cell.SetFarmLevel(2)
	cell.SetPlantLevel(1)

	other := newTestGrid(t, 1, 1)
	twin := other.CellByOffset(0, 0)
	twin.SetUrbanLevel(3)
	twin.SetFarmLevel(2)
	twin.SetPlantLevel(1)

	fm := newFeatureManager(g.Metrics(), g.Catalog(), newMesh(LayerWalls, g.Metrics(), NewBufferPool()))
	fm2 := newFeatureManager(other.Metrics(), other.Catalog(), newMesh(LayerWalls, other.Metrics(), NewBufferPool()))

	placed := 0
	for i := 0; i < 100; i++ {
		p := math.Vec3{X: float32(i) * 7.3, Z: float32(i) * -4.1}
		want, wantHash, wantOK := fm.SelectFeature(cell, p)
		for range 3 {
			got, hash, ok := fm.SelectFeature(cell, p)
			if ok != wantOK || got != want || hash != wantHash {
				t.Fatalf("selection at %v changed between calls", p)
			}
		}
		if got, _, ok := fm2.SelectFeature(twin, p); ok != wantOK || got != want {
			t.Fatalf("same seed picked differently at %v", p)
		}
		if wantOK {
			placed++
		}
	}
	if placed == 0 {
		t.Error("dense cell never got a feature")
	}
}

func TestSelectFeatureLowestHashWins(t *testing.T) {
	g := newTestGrid(t, 1, 1)
	cell := g.CellByOffset(0, 0)
	cell.SetUrbanLevel(3)
	cell.SetFarmLevel(3)
	cell.SetPlantLevel(3)
	fm := newFeatureManager(g.Metrics(), g.Catalog(), newMesh(LayerWalls, g.Metrics(), NewBufferPool()))

	for i := 0; i < 200; i++ {
		p := math.Vec3{X: float32(i) * 4, Z: float32(i%17) * -4}
		prefab, h, ok := fm.SelectFeature(cell, p)
		if !ok {
			continue
		}
		selector := map[FeatureCategory]float32{Urban: h.A, Farm: h.B, Plant: h.C}
		for cat, v := range selector {
			if v < 0.8 && v < selector[prefab.Category] {
				t.Fatalf("%v won with %v although %v had %v", prefab.Category, selector[prefab.Category], cat, v)
			}
		}
	}
}

func TestAddFeatureRotation(t *testing.T) {
	g := newTestGrid(t, 1, 1)
	cell := g.CellByOffset(0, 0)
	cell.SetPlantLevel(3)
	fm := newFeatureManager(g.Metrics(), g.Catalog(), newMesh(LayerWalls, g.Metrics(), NewBufferPool()))
	fm.Clear()

	for i := 0; i < 50; i++ {
		fm.AddFeature(cell, math.Vec3{X: float32(i) * 4})
	}
	_, instances := fm.Apply()
	if len(instances) == 0 {
		t.Fatal("no plants placed")
	}
	for _, f := range instances {
		h := g.Metrics().SampleHashGrid(f.Position)
		if f.Rotation != 360*h.E {
			t.Errorf("rotation %v, want %v", f.Rotation, 360*h.E)
		}
		if f.Prefab.Category != Plant {
			t.Errorf("category %v", f.Prefab.Category)
		}
	}
}

func TestChunkFeaturesRepeatable(t *testing.T) {
	g := newTestGrid(t, 3, 3)
	for i, c := range g.Cells() {
		c.SetUrbanLevel(i % 4)
		c.SetFarmLevel((i + 1) % 4)
		c.SetPlantLevel((i + 2) % 4)
	}
	g.RefreshDirty()
	first := append([]FeatureInstance(nil), g.Chunk(0).Features()...)
	if len(first) == 0 {
		t.Fatal("no features placed")
	}
	g.RefreshAll()
	if !reflect.DeepEqual(first, g.Chunk(0).Features()) {
		t.Error("features changed between refreshes")
	}
}

func TestNoFeaturesOnRoadSectors(t *testing.T) {
	g := newTestGrid(t, 2, 1)
	a := g.CellByOffset(0, 0)
	a.SetUrbanLevel(3)
	a.SetFarmLevel(3)
	a.SetPlantLevel(3)
	g.RefreshDirty()
	before := len(g.Chunk(0).Features())

	a.AddRoad(E)
	g.RefreshDirty()
	features := g.Chunk(0).Features()
	if len(features) > before {
		t.Errorf("road added features: %d -> %d", before, len(features))
	}

	center := a.Position()
	e := NewEdgeVertices(center.Add(FirstSolidCorner(E)), center.Add(SecondSolidCorner(E)))
	blocked := []math.Vec3{center, sectorCentroid(center, e)}
	for _, f := range features {
		for _, p := range blocked {
			if approxEqual(f.Position, p) {
				t.Errorf("feature at %v sits on the road", p)
			}
		}
	}
}
