package noise

import (
	"context"
	"fmt"
	stdmath "math"
	"runtime"

	opensimplex "github.com/ojrac/opensimplex-go"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/hexmap/pkg/math"
)

// GenerateOptions control the synthesized texture.
type GenerateOptions struct {
	Size        int
	Seed        int64
	Octaves     int
	Frequency   float64
	Persistence float64
}

// DefaultGenerateOptions returns a 256x256 texture with four octaves.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Size:        256,
		Seed:        1,
		Octaves:     4,
		Frequency:   1.5,
		Persistence: 0.5,
	}
}

// Generate synthesizes a seamless texture. Each channel uses its own
// OpenSimplex generator; texel coordinates are wrapped onto a torus in 4D
// space so opposite borders join without seams. Rows are filled in
// parallel and the result depends only on opts.
func Generate(ctx context.Context, opts GenerateOptions) (*Texture, error) {
	if opts.Octaves < 1 {
		opts.Octaves = 1
	}
	t, err := NewTexture(opts.Size, opts.Size)
	if err != nil {
		return nil, err
	}

	var channels [4]opensimplex.Noise
	for i := range channels {
		channels[i] = opensimplex.NewNormalized(opts.Seed + int64(i))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < opts.Size; y++ {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			for x := 0; x < opts.Size; x++ {
				t.texels[y*t.width+x] = sampleTorus(channels, x, y, opts)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("generate noise: %w", err)
	}
	return t, nil
}

func sampleTorus(channels [4]opensimplex.Noise, x, y int, opts GenerateOptions) math.Vec4 {
	s := 2 * stdmath.Pi * float64(x) / float64(opts.Size)
	t := 2 * stdmath.Pi * float64(y) / float64(opts.Size)
	a, b := stdmath.Cos(s), stdmath.Sin(s)
	c, d := stdmath.Cos(t), stdmath.Sin(t)

	var out [4]float32
	for i, n := range channels {
		out[i] = float32(octaves(n, a, b, c, d, opts))
	}
	return math.Vec4{X: out[0], Y: out[1], Z: out[2], W: out[3]}
}

// octaves sums fractal layers of normalized noise; the result stays in
// [0,1].
func octaves(n opensimplex.Noise, a, b, c, d float64, opts GenerateOptions) float64 {
	total, amplitude, norm := 0.0, 1.0, 0.0
	freq := opts.Frequency
	for range opts.Octaves {
		total += n.Eval4(a*freq, b*freq, c*freq, d*freq) * amplitude
		norm += amplitude
		amplitude *= opts.Persistence
		freq *= 2
	}
	return min(max(total/norm, 0), 1)
}
