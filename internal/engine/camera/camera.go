// Package camera provides the orbit camera used to inspect a hex map.
package camera

import (
	gomath "math"

	"github.com/Faultbox/hexmap/pkg/math"
)

// OrbitCamera orbits around a center point on the map.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	FovY float32 // radians
	Near float32
	Far  float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with defaults sized for a map of a
// few chunks.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        120,
		Pitch:           0.9,
		MinDistance:     10,
		MaxDistance:     1500,
		MinPitch:        0.1,
		MaxPitch:        1.5,
		FovY:            float32(gomath.Pi / 4),
		Near:            0.5,
		Far:             5000,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	offset := math.Vec3{
		X: c.Distance * float32(cp*gomath.Sin(float64(c.Yaw))),
		Y: c.Distance * float32(gomath.Sin(float64(c.Pitch))),
		Z: c.Distance * float32(cp*gomath.Cos(float64(c.Yaw))),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for the given aspect
// ratio (width / height).
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center point relative to the current yaw.
func (c *OrbitCamera) HandleMovement(forward, right float32) {
	speed := c.Distance * 0.01

	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))

	// forward points away from the camera, which sits on the +offset side
	c.Center.X += (-sin*forward + cos*right) * speed
	c.Center.Z += (-cos*forward - sin*right) * speed
}

// FitToBounds centers the camera over an axis-aligned box and backs off far
// enough to see all of it.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Lerp(hi, 0.5)

	size := hi.X - lo.X
	if d := hi.Z - lo.Z; d > size {
		size = d
	}
	c.Distance = clamp(size, c.MinDistance, c.MaxDistance)
	c.Pitch = clamp(0.9, c.MinPitch, c.MaxPitch)
	c.Yaw = 0
}

// Ray is a half line in world space.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // normalized
}

// Ray returns the world-space ray through a point on the screen.
// Screen coordinates have their origin at the top left corner.
func (c *OrbitCamera) Ray(screenX, screenY, width, height float32) Ray {
	eye := c.Position()
	forward := c.Center.Sub(eye).Normalize()
	right := forward.Cross(math.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	ndcX := 2*screenX/width - 1
	ndcY := 1 - 2*screenY/height
	tanHalf := float32(gomath.Tan(float64(c.FovY) / 2))
	aspect := width / height

	dir := forward.
		Add(right.Scale(ndcX * tanHalf * aspect)).
		Add(up.Scale(ndcY * tanHalf))
	return Ray{Origin: eye, Direction: dir.Normalize()}
}

// IntersectPlaneY intersects the ray with the horizontal plane at y.
// It reports false when the ray is parallel to the plane or points away.
func (r Ray) IntersectPlaneY(y float32) (math.Vec3, bool) {
	if gomath.Abs(float64(r.Direction.Y)) < 1e-6 {
		return math.Vec3{}, false
	}
	t := (y - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.Origin.Add(r.Direction.Scale(t)), true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
