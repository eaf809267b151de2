package hexrender

import (
	gomath "math"

	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/pkg/math"
)

// floatsPerVertex is position(3) + color(3) + uv(2).
const floatsPerVertex = 8

// blendMode selects how the fragment shader computes alpha.
type blendMode int32

const (
	blendOpaque blendMode = iota
	blendStrip            // alpha fades out towards uv.x = 0
	blendWater
)

type layerStyle struct {
	tint  math.Color
	blend blendMode
}

var layerStyles = [hexmap.LayerCount]layerStyle{
	hexmap.LayerTerrain:    {tint: math.Color{R: 1, G: 1, B: 1}, blend: blendOpaque},
	hexmap.LayerRivers:     {tint: math.Color{R: 0.25, G: 0.5, B: 0.85}, blend: blendStrip},
	hexmap.LayerRoads:      {tint: math.Color{R: 0.45, G: 0.35, B: 0.25}, blend: blendStrip},
	hexmap.LayerWater:      {tint: math.Color{R: 0.2, G: 0.4, B: 0.8}, blend: blendWater},
	hexmap.LayerWaterShore: {tint: math.Color{R: 0.3, G: 0.55, B: 0.85}, blend: blendWater},
	hexmap.LayerEstuaries:  {tint: math.Color{R: 0.3, G: 0.55, B: 0.85}, blend: blendWater},
	hexmap.LayerWalls:      {tint: math.Color{R: 0.6, G: 0.6, B: 0.58}, blend: blendOpaque},
}

// drawOrder puts opaque layers first so blended ones see a complete depth
// buffer.
var drawOrder = [hexmap.LayerCount]hexmap.Layer{
	hexmap.LayerTerrain,
	hexmap.LayerWalls,
	hexmap.LayerRoads,
	hexmap.LayerRivers,
	hexmap.LayerEstuaries,
	hexmap.LayerWaterShore,
	hexmap.LayerWater,
}

var featureColors = map[hexmap.FeatureCategory]math.Color{
	hexmap.Urban: {R: 0.75, G: 0.35, B: 0.3},
	hexmap.Farm:  {R: 0.55, G: 0.75, B: 0.3},
	hexmap.Plant: {R: 0.2, G: 0.5, B: 0.2},
	hexmap.Tower: {R: 0.55, G: 0.55, B: 0.55},
}

// interleave packs a layer's attribute arrays into one vertex buffer.
// Layers without vertex colors get the tint; missing UVs are zero.
func interleave(geo *hexmap.Geometry, tint math.Color) []float32 {
	n := geo.VertexCount()
	out := make([]float32, 0, n*floatsPerVertex)
	hasColor := len(geo.Colors) == n*3
	hasUV := len(geo.UVs) == n*2

	for i := 0; i < n; i++ {
		out = append(out, geo.Positions[i*3], geo.Positions[i*3+1], geo.Positions[i*3+2])
		if hasColor {
			out = append(out, geo.Colors[i*3], geo.Colors[i*3+1], geo.Colors[i*3+2])
		} else {
			out = append(out, tint.R, tint.G, tint.B)
		}
		if hasUV {
			out = append(out, geo.UVs[i*2], geo.UVs[i*2+1])
		} else {
			out = append(out, 0, 0)
		}
	}
	return out
}

// featureMatrix places the unit cube, which spans [-0.5,0.5] on X and Z and
// [0,1] on Y, at a feature. Rotation is in degrees around +Y.
func featureMatrix(f hexmap.FeatureInstance) math.Mat4 {
	rad := float64(f.Rotation) * gomath.Pi / 180
	sin := float32(gomath.Sin(rad))
	cos := float32(gomath.Cos(rad))
	s := f.Prefab.Size
	p := f.Position

	return math.Mat4{
		cos * s.X, 0, -sin * s.X, 0,
		0, s.Y, 0, 0,
		sin * s.Z, 0, cos * s.Z, 0,
		p.X, p.Y, p.Z, 1,
	}
}

// cubeVertices returns the interleaved unit cube, white with zero UVs.
func cubeVertices() ([]float32, []uint32) {
	corners := [8]math.Vec3{
		{X: -0.5, Y: 0, Z: -0.5}, {X: 0.5, Y: 0, Z: -0.5},
		{X: 0.5, Y: 0, Z: 0.5}, {X: -0.5, Y: 0, Z: 0.5},
		{X: -0.5, Y: 1, Z: -0.5}, {X: 0.5, Y: 1, Z: -0.5},
		{X: 0.5, Y: 1, Z: 0.5}, {X: -0.5, Y: 1, Z: 0.5},
	}
	vertices := make([]float32, 0, len(corners)*floatsPerVertex)
	for _, c := range corners {
		vertices = append(vertices, c.X, c.Y, c.Z, 1, 1, 1, 0, 0)
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // bottom
		4, 5, 6, 4, 6, 7, // top
		0, 1, 5, 0, 5, 4,
		1, 2, 6, 1, 6, 5,
		2, 3, 7, 2, 7, 6,
		3, 0, 4, 3, 4, 7,
	}
	return vertices, indices
}

// sunDirection returns the direction sunlight travels for a sun at the given
// azimuth around +Y and elevation above the horizon, both in degrees.
func sunDirection(azimuth, elevation float32) math.Vec3 {
	az := float64(azimuth) * gomath.Pi / 180
	el := float64(elevation) * gomath.Pi / 180
	toSun := math.Vec3{
		X: float32(gomath.Cos(el) * gomath.Sin(az)),
		Y: float32(gomath.Sin(el)),
		Z: float32(gomath.Cos(el) * gomath.Cos(az)),
	}
	return toSun.Scale(-1)
}
