package math

// Vec4 is a 4-component vector, used for RGBA noise samples.
type Vec4 struct {
	X, Y, Z, W float32
}

// Lerp interpolates linearly from v towards other.
func (v Vec4) Lerp(other Vec4, t float32) Vec4 {
	return Vec4{
		v.X + (other.X-v.X)*t,
		v.Y + (other.Y-v.Y)*t,
		v.Z + (other.Z-v.Z)*t,
		v.W + (other.W-v.W)*t,
	}
}
