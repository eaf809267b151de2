package hexmap

import (
	"errors"
	"fmt"

	"github.com/Faultbox/hexmap/pkg/math"
)

// Fixed cell geometry.
const (
	OuterToInner = 0.866025404
	InnerToOuter = 1 / OuterToInner

	OuterRadius = 10
	InnerRadius = OuterRadius * OuterToInner

	// InvZ mirrors the grid along Z so rows advance towards -Z.
	InvZ = -1

	SolidFactor = 0.8
	BlendFactor = 1 - SolidFactor

	WaterFactor      = 0.6
	WaterBlendFactor = 1 - WaterFactor

	StreamBedElevationOffset = -1.75
	WaterElevationOffset     = -0.5

	WallHeight    = 4
	WallYOffset   = -1
	WallThickness = 0.75
)

var corners = [7]math.Vec3{
	{X: 0, Y: 0, Z: InvZ * OuterRadius},
	{X: InnerRadius, Y: 0, Z: InvZ * 0.5 * OuterRadius},
	{X: InnerRadius, Y: 0, Z: InvZ * -0.5 * OuterRadius},
	{X: 0, Y: 0, Z: InvZ * -OuterRadius},
	{X: -InnerRadius, Y: 0, Z: InvZ * -0.5 * OuterRadius},
	{X: -InnerRadius, Y: 0, Z: InvZ * 0.5 * OuterRadius},
	{X: 0, Y: 0, Z: InvZ * OuterRadius},
}

// featureThresholds holds, per density level, the hash bounds for the large,
// medium and small prefab tiers.
var featureThresholds = [3][3]float32{
	{0.0, 0.0, 0.4},
	{0.0, 0.4, 0.6},
	{0.4, 0.6, 0.8},
}

var (
	// ErrEmptyNoise is returned when metrics are built without a noise source.
	ErrEmptyNoise = errors.New("hexmap: noise source is required")
	// ErrInvalidSize is returned for non-positive grid, chunk or hash sizes.
	ErrInvalidSize = errors.New("hexmap: invalid size")
)

// NoiseSource is a tiled four channel noise texture. Sample takes texture
// coordinates that wrap outside [0,1) and returns channels in [0,1].
type NoiseSource interface {
	Sample(u, v float32) math.Vec4
}

// ConstantNoise returns the same sample everywhere. A value of 0.5 in every
// channel disables all perturbation.
type ConstantNoise math.Vec4

// Sample implements NoiseSource.
func (n ConstantNoise) Sample(u, v float32) math.Vec4 {
	return math.Vec4(n)
}

// FlatNoise is a noise source that produces no perturbation at all.
var FlatNoise = ConstantNoise{X: 0.5, Y: 0.5, Z: 0.5, W: 0.5}

// Settings are the tunable parameters of the cell geometry.
type Settings struct {
	ElevationStep            float32
	CellPerturbStrength      float32
	ElevationPerturbStrength float32
	NoiseScale               float32
	TerracesPerSlope         int
	HashSeed                 int64
	HashGridSize             int
	HashGridScale            float32
	WallTowerThreshold       float32
}

// DefaultSettings returns the standard hex map tuning.
func DefaultSettings() Settings {
	return Settings{
		ElevationStep:            3,
		CellPerturbStrength:      4,
		ElevationPerturbStrength: 1.5,
		NoiseScale:               0.003,
		TerracesPerSlope:         2,
		HashSeed:                 1234,
		HashGridSize:             256,
		HashGridScale:            0.25,
		WallTowerThreshold:       0.5,
	}
}

// Metrics owns the noise source and the hash grid and answers every derived
// geometric question. It is immutable after construction and safe for
// concurrent use by chunk triangulation.
type Metrics struct {
	Settings

	terraceSteps       int
	horizontalStepSize float32
	verticalStepSize   float32

	noise NoiseSource
	hash  *HashGrid
}

// NewMetrics validates settings and builds the hash grid.
func NewMetrics(s Settings, noise NoiseSource) (*Metrics, error) {
	if noise == nil {
		return nil, ErrEmptyNoise
	}
	if s.TerracesPerSlope < 1 {
		return nil, fmt.Errorf("terraces per slope %d: %w", s.TerracesPerSlope, ErrInvalidSize)
	}
	hash, err := NewHashGrid(s.HashSeed, s.HashGridSize, s.HashGridScale)
	if err != nil {
		return nil, err
	}
	steps := s.TerracesPerSlope*2 + 1
	return &Metrics{
		Settings:           s,
		terraceSteps:       steps,
		horizontalStepSize: 1 / float32(steps),
		verticalStepSize:   1 / float32(s.TerracesPerSlope+1),
		noise:              noise,
		hash:               hash,
	}, nil
}

// TerraceSteps is the number of interpolation steps across a slope.
func (m *Metrics) TerraceSteps() int {
	return m.terraceSteps
}

// FirstCorner returns the hexagon corner that starts sector d.
func FirstCorner(d Direction) math.Vec3 {
	return corners[d]
}

// SecondCorner returns the hexagon corner that ends sector d.
func SecondCorner(d Direction) math.Vec3 {
	return corners[d+1]
}

// FirstSolidCorner returns FirstCorner shrunk to the solid region.
func FirstSolidCorner(d Direction) math.Vec3 {
	return corners[d].Scale(SolidFactor)
}

// SecondSolidCorner returns SecondCorner shrunk to the solid region.
func SecondSolidCorner(d Direction) math.Vec3 {
	return corners[d+1].Scale(SolidFactor)
}

// SolidEdgeMiddle returns the middle of the solid edge in direction d.
func SolidEdgeMiddle(d Direction) math.Vec3 {
	return corners[d].Add(corners[d+1]).Scale(0.5 * SolidFactor)
}

// Bridge spans the blend region between two neighbors' solid edges.
func Bridge(d Direction) math.Vec3 {
	return corners[d].Add(corners[d+1]).Scale(BlendFactor)
}

// FirstWaterCorner returns FirstCorner shrunk to the open water region.
func FirstWaterCorner(d Direction) math.Vec3 {
	return corners[d].Scale(WaterFactor)
}

// SecondWaterCorner returns SecondCorner shrunk to the open water region.
func SecondWaterCorner(d Direction) math.Vec3 {
	return corners[d+1].Scale(WaterFactor)
}

// WaterBridge spans the gap between two neighbors' open water regions.
func WaterBridge(d Direction) math.Vec3 {
	return corners[d].Add(corners[d+1]).Scale(WaterBlendFactor)
}

// TerraceLerp moves horizontally by step/terraceSteps and vertically only on
// odd steps, which yields flat treads separated by risers.
func (m *Metrics) TerraceLerp(a, b math.Vec3, step int) math.Vec3 {
	h := float32(step) * m.horizontalStepSize
	a.X += (b.X - a.X) * h
	a.Z += (b.Z - a.Z) * h
	v := float32((step+1)/2) * m.verticalStepSize
	a.Y += (b.Y - a.Y) * v
	return a
}

// TerraceLerpColor blends colors with the horizontal terrace step.
func (m *Metrics) TerraceLerpColor(a, b math.Color, step int) math.Color {
	return a.Lerp(b, float32(step)*m.horizontalStepSize)
}

// SampleNoise reads the noise texture at the XZ position.
func (m *Metrics) SampleNoise(p math.Vec3) math.Vec4 {
	return m.noise.Sample(p.X*m.NoiseScale, p.Z*m.NoiseScale)
}

// Perturb jitters X and Z of p using the noise texture. Y is untouched.
func (m *Metrics) Perturb(p math.Vec3) math.Vec3 {
	sample := m.SampleNoise(p)
	p.X += (sample.X*2 - 1) * m.CellPerturbStrength
	p.Z += (sample.Z*2 - 1) * m.CellPerturbStrength
	return p
}

// SampleHashGrid returns the hash tuple for the position.
func (m *Metrics) SampleHashGrid(p math.Vec3) Hash {
	return m.hash.Sample(p)
}

// FeatureThresholds returns the tier bounds for a density level index.
func FeatureThresholds(level int) [3]float32 {
	return featureThresholds[level]
}

// WallThicknessOffset points sideways across the wall, half a wall thick.
func WallThicknessOffset(near, far math.Vec3) math.Vec3 {
	offset := math.Vec3{X: far.X - near.X, Z: far.Z - near.Z}
	return offset.Normalize().Scale(WallThickness * 0.5)
}

// WallLerp finds the wall base between two edge points. On slopes the wall
// sits on the lower terrace.
func (m *Metrics) WallLerp(near, far math.Vec3) math.Vec3 {
	near.X += (far.X - near.X) * 0.5
	near.Z += (far.Z - near.Z) * 0.5
	v := m.verticalStepSize
	if near.Y >= far.Y {
		v = 1 - m.verticalStepSize
	}
	near.Y += (far.Y-near.Y)*v + WallYOffset
	return near
}

// EdgeType classifies the connection between two elevations.
type EdgeType int

// Edge types.
const (
	Flat EdgeType = iota
	Slope
	Cliff
)

func (t EdgeType) String() string {
	switch t {
	case Flat:
		return "Flat"
	case Slope:
		return "Slope"
	default:
		return "Cliff"
	}
}

// EdgeTypeOf returns Flat for equal elevations, Slope for a difference of
// one and Cliff otherwise.
func EdgeTypeOf(elevation1, elevation2 int) EdgeType {
	if elevation1 == elevation2 {
		return Flat
	}
	delta := elevation2 - elevation1
	if delta == 1 || delta == -1 {
		return Slope
	}
	return Cliff
}
