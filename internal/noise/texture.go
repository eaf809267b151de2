// Package noise provides the tiled four channel noise textures that drive
// cell perturbation: decoded from an image file or generated from
// OpenSimplex noise.
package noise

import (
	"errors"
	"fmt"
	"image"
	stdmath "math"

	"golang.org/x/image/draw"

	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/pkg/math"
)

// ErrEmpty is returned for images without pixels.
var ErrEmpty = errors.New("noise: empty texture")

var _ hexmap.NoiseSource = (*Texture)(nil)

// Texture is a wrapping RGBA noise texture with channels stored as floats in
// [0,1]. Row 0 is the bottom of the texture, so v grows upwards.
type Texture struct {
	width, height int
	texels        []math.Vec4
}

// NewTexture allocates a zeroed texture.
func NewTexture(width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture %dx%d: %w", width, height, ErrEmpty)
	}
	return &Texture{
		width:  width,
		height: height,
		texels: make([]math.Vec4, width*height),
	}, nil
}

// FromImage converts a decoded image. Image rows are top-down and are
// flipped on the way in.
func FromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	t, err := NewTexture(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	for y := 0; y < t.height; y++ {
		row := t.height - 1 - y
		for x := 0; x < t.width; x++ {
			i := rgba.PixOffset(x, row)
			p := rgba.Pix[i : i+4 : i+4]
			t.texels[y*t.width+x] = math.Vec4{
				X: float32(p[0]) / 255,
				Y: float32(p[1]) / 255,
				Z: float32(p[2]) / 255,
				W: float32(p[3]) / 255,
			}
		}
	}
	return t, nil
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Texel returns the texel at x, y with wrapping.
func (t *Texture) Texel(x, y int) math.Vec4 {
	return t.texels[wrap(y, t.height)*t.width+wrap(x, t.width)]
}

// SetTexel stores a texel; channels are clamped to [0,1].
func (t *Texture) SetTexel(x, y int, v math.Vec4) {
	t.texels[wrap(y, t.height)*t.width+wrap(x, t.width)] = math.Vec4{
		X: clamp01(v.X),
		Y: clamp01(v.Y),
		Z: clamp01(v.Z),
		W: clamp01(v.W),
	}
}

// Sample reads the texture bilinearly with repeat wrapping. Texel centers
// sit at (x+0.5)/width.
func (t *Texture) Sample(u, v float32) math.Vec4 {
	fx := float64(u)*float64(t.width) - 0.5
	fy := float64(v)*float64(t.height) - 0.5
	x0 := stdmath.Floor(fx)
	y0 := stdmath.Floor(fy)
	tx := float32(fx - x0)
	ty := float32(fy - y0)

	ix, iy := int(x0), int(y0)
	bottom := t.Texel(ix, iy).Lerp(t.Texel(ix+1, iy), tx)
	top := t.Texel(ix, iy+1).Lerp(t.Texel(ix+1, iy+1), tx)
	return bottom.Lerp(top, ty)
}

// Image renders the texture back into a top-down image.
func (t *Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	for y := 0; y < t.height; y++ {
		row := t.height - 1 - y
		for x := 0; x < t.width; x++ {
			v := t.texels[y*t.width+x]
			i := img.PixOffset(x, row)
			img.Pix[i] = toByte(v.X)
			img.Pix[i+1] = toByte(v.Y)
			img.Pix[i+2] = toByte(v.Z)
			img.Pix[i+3] = toByte(v.W)
		}
	}
	return img
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

func toByte(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
