package hexmap

import (
	"sync"

	"github.com/Faultbox/hexmap/pkg/math"
)

// Layer identifies one of the chunk meshes.
type Layer int

// Mesh layers, in the order chunks store them.
const (
	LayerTerrain Layer = iota
	LayerRivers
	LayerRoads
	LayerWater
	LayerWaterShore
	LayerEstuaries
	LayerWalls

	LayerCount int = iota
)

var layerNames = [LayerCount]string{
	"terrain", "rivers", "roads", "water", "water_shore", "estuaries", "walls",
}

func (l Layer) String() string {
	if l < 0 || int(l) >= LayerCount {
		return "unknown"
	}
	return layerNames[l]
}

// Layers lists every mesh layer.
var Layers = [LayerCount]Layer{
	LayerTerrain, LayerRivers, LayerRoads, LayerWater, LayerWaterShore, LayerEstuaries, LayerWalls,
}

// ParseLayer looks up a layer by its name.
func ParseLayer(name string) (Layer, bool) {
	for i, n := range layerNames {
		if n == name {
			return Layer(i), true
		}
	}
	return 0, false
}

// LayerFormat describes which optional vertex attributes a layer carries.
type LayerFormat struct {
	Colors bool
	UVs    bool
	UV2s   bool
}

var layerFormats = [LayerCount]LayerFormat{
	LayerTerrain:    {Colors: true},
	LayerRivers:     {UVs: true},
	LayerRoads:      {UVs: true},
	LayerWater:      {},
	LayerWaterShore: {UVs: true},
	LayerEstuaries:  {UVs: true, UV2s: true},
	LayerWalls:      {},
}

// Format returns the vertex attributes the layer carries.
func (l Layer) Format() LayerFormat {
	return layerFormats[l]
}

// Geometry is the finished mesh of one chunk layer. Positions hold three
// floats per vertex, colors three, UV channels two.
type Geometry struct {
	Indices   []uint32
	Positions []float32
	Colors    []float32
	UVs       []float32
	UV2s      []float32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Vertex returns vertex i as a vector.
func (g *Geometry) Vertex(i int) math.Vec3 {
	return math.Vec3{X: g.Positions[i*3], Y: g.Positions[i*3+1], Z: g.Positions[i*3+2]}
}

// Empty reports whether the geometry has no triangles.
func (g *Geometry) Empty() bool {
	return len(g.Indices) == 0
}

type buffers struct {
	indices   []uint32
	positions []float32
	colors    []float32
	uvs       []float32
	uv2s      []float32
}

func (b *buffers) reset() {
	b.indices = b.indices[:0]
	b.positions = b.positions[:0]
	b.colors = b.colors[:0]
	b.uvs = b.uvs[:0]
	b.uv2s = b.uv2s[:0]
}

// BufferPool recycles scratch vertex buffers per mesh layer so repeated
// refreshes do not reallocate. It is safe for concurrent use.
type BufferPool struct {
	pools [LayerCount]sync.Pool
}

// NewBufferPool creates an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{}
}

func (p *BufferPool) get(l Layer) *buffers {
	if b, ok := p.pools[l].Get().(*buffers); ok {
		b.reset()
		return b
	}
	return &buffers{
		indices:   make([]uint32, 0, 1024),
		positions: make([]float32, 0, 1024),
	}
}

func (p *BufferPool) put(l Layer, b *buffers) {
	b.reset()
	p.pools[l].Put(b)
}

// Mesh accumulates triangles for one layer during a chunk triangulation.
type Mesh struct {
	layer   Layer
	format  LayerFormat
	metrics *Metrics
	pool    *BufferPool
	buf     *buffers
}

func newMesh(l Layer, m *Metrics, pool *BufferPool) *Mesh {
	return &Mesh{layer: l, format: l.Format(), metrics: m, pool: pool}
}

// Clear takes fresh scratch buffers from the pool.
func (h *Mesh) Clear() {
	if h.buf != nil {
		h.pool.put(h.layer, h.buf)
	}
	h.buf = h.pool.get(h.layer)
}

// Apply copies the scratch buffers into exactly sized geometry and returns
// the scratch buffers to the pool.
func (h *Mesh) Apply() Geometry {
	b := h.buf
	h.buf = nil
	if b == nil {
		return Geometry{}
	}
	g := Geometry{
		Indices:   append([]uint32(nil), b.indices...),
		Positions: append([]float32(nil), b.positions...),
	}
	if h.format.Colors {
		g.Colors = append([]float32(nil), b.colors...)
	}
	if h.format.UVs {
		g.UVs = append([]float32(nil), b.uvs...)
	}
	if h.format.UV2s {
		g.UV2s = append([]float32(nil), b.uv2s...)
	}
	h.pool.put(h.layer, b)
	return g
}

func (h *Mesh) vertexIndex() uint32 {
	return uint32(len(h.buf.positions) / 3)
}

func (h *Mesh) addVertex(v math.Vec3) {
	h.buf.positions = append(h.buf.positions, v.X, v.Y, v.Z)
}

// AddTriangle adds a triangle with perturbed corners.
func (h *Mesh) AddTriangle(v1, v2, v3 math.Vec3) {
	h.AddTriangleUnperturbed(h.metrics.Perturb(v1), h.metrics.Perturb(v2), h.metrics.Perturb(v3))
}

// AddTriangleUnperturbed adds a triangle with the corners as given.
func (h *Mesh) AddTriangleUnperturbed(v1, v2, v3 math.Vec3) {
	i := h.vertexIndex()
	h.addVertex(v1)
	h.addVertex(v2)
	h.addVertex(v3)
	h.buf.indices = append(h.buf.indices, i, i+1, i+2)
}

// AddTriangleColor colors the last triangle with one color.
func (h *Mesh) AddTriangleColor(c math.Color) {
	h.AddTriangleColors(c, c, c)
}

// AddTriangleColors colors the last triangle per vertex.
func (h *Mesh) AddTriangleColors(c1, c2, c3 math.Color) {
	h.buf.colors = append(h.buf.colors, c1.R, c1.G, c1.B, c2.R, c2.G, c2.B, c3.R, c3.G, c3.B)
}

// AddTriangleUV sets the first UV channel of the last triangle.
func (h *Mesh) AddTriangleUV(uv1, uv2, uv3 math.Vec2) {
	h.buf.uvs = append(h.buf.uvs, uv1.X, uv1.Y, uv2.X, uv2.Y, uv3.X, uv3.Y)
}

// AddTriangleUV2 sets the second UV channel of the last triangle.
func (h *Mesh) AddTriangleUV2(uv1, uv2, uv3 math.Vec2) {
	h.buf.uv2s = append(h.buf.uv2s, uv1.X, uv1.Y, uv2.X, uv2.Y, uv3.X, uv3.Y)
}

// AddQuad adds a quad with perturbed corners. v1 and v2 form the near edge,
// v3 and v4 the far edge.
func (h *Mesh) AddQuad(v1, v2, v3, v4 math.Vec3) {
	m := h.metrics
	h.AddQuadUnperturbed(m.Perturb(v1), m.Perturb(v2), m.Perturb(v3), m.Perturb(v4))
}

// AddQuadUnperturbed adds a quad with the corners as given.
func (h *Mesh) AddQuadUnperturbed(v1, v2, v3, v4 math.Vec3) {
	i := h.vertexIndex()
	h.addVertex(v1)
	h.addVertex(v2)
	h.addVertex(v3)
	h.addVertex(v4)
	h.buf.indices = append(h.buf.indices, i, i+2, i+1, i+1, i+2, i+3)
}

// AddQuadColor colors the last quad with one color.
func (h *Mesh) AddQuadColor(c math.Color) {
	h.AddQuadColors(c, c, c, c)
}

// AddQuadColor2 colors the near edge c1 and the far edge c2.
func (h *Mesh) AddQuadColor2(c1, c2 math.Color) {
	h.AddQuadColors(c1, c1, c2, c2)
}

// AddQuadColors colors the last quad per vertex.
func (h *Mesh) AddQuadColors(c1, c2, c3, c4 math.Color) {
	h.buf.colors = append(h.buf.colors,
		c1.R, c1.G, c1.B, c2.R, c2.G, c2.B, c3.R, c3.G, c3.B, c4.R, c4.G, c4.B)
}

// AddQuadUV sets the first UV channel of the last quad per vertex.
func (h *Mesh) AddQuadUV(uv1, uv2, uv3, uv4 math.Vec2) {
	h.buf.uvs = append(h.buf.uvs, uv1.X, uv1.Y, uv2.X, uv2.Y, uv3.X, uv3.Y, uv4.X, uv4.Y)
}

// AddQuadUVRect sets the first UV channel of the last quad from U and V
// ranges.
func (h *Mesh) AddQuadUVRect(uMin, uMax, vMin, vMax float32) {
	h.AddQuadUV(
		math.Vec2{X: uMin, Y: vMin}, math.Vec2{X: uMax, Y: vMin},
		math.Vec2{X: uMin, Y: vMax}, math.Vec2{X: uMax, Y: vMax})
}

// AddQuadUV2 sets the second UV channel of the last quad per vertex.
func (h *Mesh) AddQuadUV2(uv1, uv2, uv3, uv4 math.Vec2) {
	h.buf.uv2s = append(h.buf.uv2s, uv1.X, uv1.Y, uv2.X, uv2.Y, uv3.X, uv3.Y, uv4.X, uv4.Y)
}

// AddQuadUV2Rect sets the second UV channel of the last quad from ranges.
func (h *Mesh) AddQuadUV2Rect(uMin, uMax, vMin, vMax float32) {
	h.AddQuadUV2(
		math.Vec2{X: uMin, Y: vMin}, math.Vec2{X: uMax, Y: vMin},
		math.Vec2{X: uMin, Y: vMax}, math.Vec2{X: uMax, Y: vMax})
}
