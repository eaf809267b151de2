// Package hexrender draws hex map chunks with OpenGL. A Renderer subscribes
// to a grid and re-uploads a chunk's layers whenever it is retriangulated.
package hexrender

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/engine/shader"
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/pkg/math"
)

var _ hexmap.ChunkSink = (*Renderer)(nil)

const vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;
layout (location = 2) in vec2 aUV;

uniform mat4 uViewProj;
uniform mat4 uModel;

out vec3 vColor;
out vec2 vUV;
out vec3 vWorld;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorld = world.xyz;
	vColor = aColor;
	vUV = aUV;
	gl_Position = uViewProj * world;
}
`

const fragmentShader = `
#version 410 core

in vec3 vColor;
in vec2 vUV;
in vec3 vWorld;

uniform int uBlend;
uniform vec3 uTint;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
	vec3 normal = normalize(cross(dFdx(vWorld), dFdy(vWorld)));
	float diffuse = max(dot(normal, -uLightDir), 0.0) * 0.7 + 0.3;
	vec3 color = vColor * uTint * diffuse;

	float alpha = 1.0;
	if (uBlend == 1) {
		alpha = smoothstep(0.0, 0.4, vUV.x);
	} else if (uBlend == 2) {
		alpha = 0.65;
	}
	FragColor = vec4(color, alpha);
}
`

// gpuMesh is one uploaded vertex/index buffer pair.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

func (m *gpuMesh) delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
	}
	*m = gpuMesh{}
}

func (m *gpuMesh) upload(vertices []float32, indices []uint32) {
	if len(indices) == 0 {
		m.delete()
		return
	}
	if m.vao == 0 {
		gl.GenVertexArrays(1, &m.vao)
		gl.GenBuffers(1, &m.vbo)
		gl.GenBuffers(1, &m.ebo)
	}
	gl.BindVertexArray(m.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)

	gl.BindVertexArray(0)
	m.count = int32(len(indices))
}

func (m *gpuMesh) draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
}

type chunkMeshes struct {
	layers   [hexmap.LayerCount]gpuMesh
	features []hexmap.FeatureInstance
}

// Renderer owns the GPU copies of every chunk.
type Renderer struct {
	program *shader.Program
	chunks  []chunkMeshes
	cube    gpuMesh

	Visibility Visibility
	Wireframe  bool
	LightDir   math.Vec3

	log *zap.Logger
}

// New initializes OpenGL and compiles the map shader. It must be called
// after the context exists, on the thread that owns it.
func New(chunkCount int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log := logger.Named("hexrender")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	program, err := shader.Compile(vertexShader, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("hex shader: %w", err)
	}

	r := &Renderer{
		program:    program,
		chunks:     make([]chunkMeshes, chunkCount),
		Visibility: AllVisible(),
		LightDir:   sunDirection(135, 50),
		log:        log,
	}
	r.cube.upload(cubeVertices())

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)
	return r, nil
}

// ChunkRefreshed uploads every layer of a freshly triangulated chunk.
func (r *Renderer) ChunkRefreshed(c *hexmap.Chunk) {
	i := c.Index()
	if i >= len(r.chunks) {
		grown := make([]chunkMeshes, i+1)
		copy(grown, r.chunks)
		r.chunks = grown
	}
	cm := &r.chunks[i]

	triangles := 0
	for _, l := range hexmap.Layers {
		geo := c.Geometry(l)
		cm.layers[l].upload(interleave(geo, layerStyles[l].tint), geo.Indices)
		triangles += geo.TriangleCount()
	}
	cm.features = append(cm.features[:0], c.Features()...)

	r.log.Debug("chunk uploaded",
		zap.Int("chunk", i),
		zap.Uint64("generation", c.Generation()),
		zap.Int("triangles", triangles),
		zap.Int("features", len(cm.features)))
}

// SetSun points the light from a sun at azimuth and elevation degrees.
func (r *Renderer) SetSun(azimuth, elevation float32) {
	r.LightDir = sunDirection(azimuth, elevation)
}

// Resize sets the viewport in pixels.
func (r *Renderer) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Render draws all chunks with the given view-projection matrix.
func (r *Renderer) Render(viewProj math.Mat4) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if r.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetMat4("uModel", math.Identity())
	r.program.SetVec3("uLightDir", r.LightDir)

	for _, l := range drawOrder {
		if !r.Visibility.Layer(l) {
			continue
		}
		style := layerStyles[l]
		r.program.SetInt("uBlend", int32(style.blend))
		r.program.SetVec3("uTint", math.Vec3{X: 1, Y: 1, Z: 1})

		if style.blend != blendOpaque {
			gl.Enable(gl.BLEND)
			gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
			gl.DepthMask(false)
			gl.Enable(gl.POLYGON_OFFSET_FILL)
			gl.PolygonOffset(-1, -1)
		}
		for i := range r.chunks {
			r.chunks[i].layers[l].draw()
		}
		if style.blend != blendOpaque {
			gl.Disable(gl.POLYGON_OFFSET_FILL)
			gl.DepthMask(true)
			gl.Disable(gl.BLEND)
		}
	}

	if r.Visibility.Features() {
		r.renderFeatures()
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) renderFeatures() {
	r.program.SetInt("uBlend", int32(blendOpaque))
	for i := range r.chunks {
		for _, f := range r.chunks[i].features {
			c := featureColors[f.Prefab.Category]
			r.program.SetVec3("uTint", math.Vec3{X: c.R, Y: c.G, Z: c.B})
			r.program.SetMat4("uModel", featureMatrix(f))
			r.cube.draw()
		}
	}
	r.program.SetMat4("uModel", math.Identity())
}

// Close frees all GPU resources.
func (r *Renderer) Close() {
	for i := range r.chunks {
		for l := range r.chunks[i].layers {
			r.chunks[i].layers[l].delete()
		}
	}
	r.cube.delete()
	r.program.Delete()
}

// ReadPixels reads the current back buffer as bottom-up RGBA rows. Call it
// after Render and before the buffers are swapped.
func (r *Renderer) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}
