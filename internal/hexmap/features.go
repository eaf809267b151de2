package hexmap

import (
	"fmt"

	"github.com/Faultbox/hexmap/pkg/math"
)

// FeatureCategory groups prefabs by what they depict.
type FeatureCategory int

// Feature categories. Towers are placed by walls, not by density levels.
const (
	Urban FeatureCategory = iota
	Farm
	Plant
	Tower
)

func (c FeatureCategory) String() string {
	switch c {
	case Urban:
		return "urban"
	case Farm:
		return "farm"
	case Plant:
		return "plant"
	case Tower:
		return "tower"
	default:
		return fmt.Sprintf("FeatureCategory(%d)", int(c))
	}
}

// Prefab is a placeable prop. Size is the axis aligned extent before
// rotation.
type Prefab struct {
	Name     string
	Category FeatureCategory
	Tier     int
	Variant  int
	Size     math.Vec3
}

// PrefabCollection holds the variants of one size tier.
type PrefabCollection struct {
	Prefabs []Prefab
}

// Pick selects a variant with choice in [0,1).
func (c PrefabCollection) Pick(choice float32) Prefab {
	i := int(choice * float32(len(c.Prefabs)))
	if i >= len(c.Prefabs) {
		i = len(c.Prefabs) - 1
	}
	return c.Prefabs[i]
}

// Catalog is the prefab registry the feature manager clones from. Tiers run
// from large (0) to small (2).
type Catalog struct {
	Urban [3]PrefabCollection
	Farm  [3]PrefabCollection
	Plant [3]PrefabCollection
	Tower Prefab
}

func collection(category FeatureCategory, tier int, sizes ...math.Vec3) PrefabCollection {
	c := PrefabCollection{Prefabs: make([]Prefab, len(sizes))}
	for i, s := range sizes {
		c.Prefabs[i] = Prefab{
			Name:     fmt.Sprintf("%s-%d-%d", category, tier, i),
			Category: category,
			Tier:     tier,
			Variant:  i,
			Size:     s,
		}
	}
	return c
}

// DefaultCatalog returns box props of the classic sizes.
func DefaultCatalog() *Catalog {
	v := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }
	return &Catalog{
		Urban: [3]PrefabCollection{
			collection(Urban, 0, v(2, 5, 2), v(3.5, 3, 2)),
			collection(Urban, 1, v(1.5, 2, 1.5), v(2.75, 1.5, 1.5)),
			collection(Urban, 2, v(1, 1, 1), v(1.75, 1, 1)),
		},
		Farm: [3]PrefabCollection{
			collection(Farm, 0, v(2.5, 0.1, 2.5), v(3.5, 0.1, 2)),
			collection(Farm, 1, v(1.75, 0.1, 1.75), v(2.5, 0.1, 1.25)),
			collection(Farm, 2, v(1, 0.1, 1), v(1.5, 0.1, 0.75)),
		},
		Plant: [3]PrefabCollection{
			collection(Plant, 0, v(1.25, 4.5, 1.25), v(1.5, 3, 1.5)),
			collection(Plant, 1, v(0.75, 3, 0.75), v(1, 1.5, 1)),
			collection(Plant, 2, v(0.5, 1.5, 0.5), v(0.75, 1, 0.75)),
		},
		Tower: Prefab{Name: "tower", Category: Tower, Size: v(2, 4, 2)},
	}
}

// FeatureInstance is a placed prop. Position is the center of its base and
// Rotation is in degrees around +Y.
type FeatureInstance struct {
	Prefab   Prefab
	Position math.Vec3
	Rotation float32
}

// pickPrefab returns the prefab for a density level, or false when the hash
// value falls above every tier threshold.
func pickPrefab(collections *[3]PrefabCollection, level int, hash, choice float32) (Prefab, bool) {
	if level <= 0 {
		return Prefab{}, false
	}
	thresholds := FeatureThresholds(level - 1)
	for i, threshold := range thresholds {
		if hash < threshold {
			return collections[i].Pick(choice), true
		}
	}
	return Prefab{}, false
}

// FeatureManager places props and builds the wall mesh of one chunk.
type FeatureManager struct {
	metrics   *Metrics
	catalog   *Catalog
	walls     *Mesh
	instances []FeatureInstance
}

func newFeatureManager(m *Metrics, catalog *Catalog, walls *Mesh) *FeatureManager {
	return &FeatureManager{metrics: m, catalog: catalog, walls: walls}
}

// Clear drops placed props and resets the wall mesh.
func (f *FeatureManager) Clear() {
	f.instances = nil
	f.walls.Clear()
}

// Apply returns the wall geometry and the placed props.
func (f *FeatureManager) Apply() (Geometry, []FeatureInstance) {
	instances := f.instances
	f.instances = nil
	return f.walls.Apply(), instances
}

// SelectFeature decides which prop, if any, the cell shows at position.
// Each category picks a candidate with its own hash value; the candidate
// with the lowest value wins.
func (f *FeatureManager) SelectFeature(cell *Cell, position math.Vec3) (Prefab, Hash, bool) {
	hash := f.metrics.SampleHashGrid(position)

	prefab, ok := pickPrefab(&f.catalog.Urban, cell.UrbanLevel(), hash.A, hash.D)
	used := hash.A

	if other, found := pickPrefab(&f.catalog.Farm, cell.FarmLevel(), hash.B, hash.D); found {
		if !ok || hash.B < used {
			prefab, ok, used = other, true, hash.B
		}
	}
	if other, found := pickPrefab(&f.catalog.Plant, cell.PlantLevel(), hash.C, hash.D); found {
		if !ok || hash.C < used {
			prefab, ok = other, true
		}
	}
	return prefab, hash, ok
}

// AddFeature places the selected prop, if any, at the perturbed position.
func (f *FeatureManager) AddFeature(cell *Cell, position math.Vec3) {
	prefab, hash, ok := f.SelectFeature(cell, position)
	if !ok {
		return
	}
	f.instances = append(f.instances, FeatureInstance{
		Prefab:   prefab,
		Position: f.metrics.Perturb(position),
		Rotation: 360 * hash.E,
	})
}
