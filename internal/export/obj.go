// Package export writes refreshed chunk geometry as Wavefront OBJ so it can
// be inspected in external modeling tools.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Faultbox/hexmap/internal/hexmap"
)

// Options select what to export. Empty slices select everything.
type Options struct {
	Layers []hexmap.Layer
	Chunks []int
}

// Stats count what was written.
type Stats struct {
	Objects   int
	Vertices  int
	Triangles int
}

// WriteOBJ writes one object per non-empty chunk layer. Terrain colors use
// the common "v x y z r g b" extension and the first UV channel becomes
// vt. Chunks are written as last refreshed; dirty chunks are not rebuilt.
func WriteOBJ(w io.Writer, g *hexmap.Grid, opts Options) (Stats, error) {
	layers := opts.Layers
	if len(layers) == 0 {
		layers = hexmap.Layers[:]
	}
	chunks := make([]*hexmap.Chunk, 0, len(g.Chunks()))
	if len(opts.Chunks) == 0 {
		chunks = append(chunks, g.Chunks()...)
	} else {
		for _, i := range opts.Chunks {
			c := g.Chunk(i)
			if c == nil {
				return Stats{}, fmt.Errorf("export: chunk %d out of range", i)
			}
			chunks = append(chunks, c)
		}
	}

	bw := bufio.NewWriter(w)
	ow := &objWriter{w: bw}
	ow.line("# hexmap export: %dx%d cells, %d chunks", g.CellCountX(), g.CellCountZ(), len(chunks))

	var stats Stats
	for _, c := range chunks {
		for _, l := range layers {
			geo := c.Geometry(l)
			if geo.Empty() {
				continue
			}
			ow.object(fmt.Sprintf("chunk%d_%s", c.Index(), l), geo, l.Format())
			stats.Objects++
			stats.Vertices += geo.VertexCount()
			stats.Triangles += geo.TriangleCount()
		}
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("export: %w", err)
	}
	return stats, nil
}

// SaveOBJ writes the export to a file.
func SaveOBJ(path string, g *hexmap.Grid, opts Options) (Stats, error) {
	f, err := os.Create(path)
	if err != nil {
		return Stats{}, fmt.Errorf("export: %w", err)
	}
	stats, err := WriteOBJ(f, g, opts)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("export: %w", cerr)
	}
	return stats, err
}

// objWriter tracks the running vertex and UV offsets; OBJ indices are
// global and 1-based.
type objWriter struct {
	w         *bufio.Writer
	vertices  int
	texCoords int
	scratch   []byte
}

func (o *objWriter) line(format string, args ...any) {
	fmt.Fprintf(o.w, format+"\n", args...)
}

func (o *objWriter) object(name string, geo *hexmap.Geometry, format hexmap.LayerFormat) {
	o.line("o %s", name)

	n := geo.VertexCount()
	for i := 0; i < n; i++ {
		b := append(o.scratch[:0], 'v')
		b = appendFloats(b, geo.Positions[i*3:i*3+3])
		if format.Colors {
			b = appendFloats(b, geo.Colors[i*3:i*3+3])
		}
		o.scratch = append(b, '\n')
		o.w.Write(o.scratch)
	}
	if format.UVs {
		for i := 0; i < n; i++ {
			b := append(o.scratch[:0], 'v', 't')
			b = appendFloats(b, geo.UVs[i*2:i*2+2])
			o.scratch = append(b, '\n')
			o.w.Write(o.scratch)
		}
	}

	for i := 0; i < len(geo.Indices); i += 3 {
		b := append(o.scratch[:0], 'f')
		for _, idx := range geo.Indices[i : i+3] {
			b = append(b, ' ')
			b = strconv.AppendInt(b, int64(o.vertices+int(idx)+1), 10)
			if format.UVs {
				b = append(b, '/')
				b = strconv.AppendInt(b, int64(o.texCoords+int(idx)+1), 10)
			}
		}
		o.scratch = append(b, '\n')
		o.w.Write(o.scratch)
	}

	o.vertices += n
	if format.UVs {
		o.texCoords += n
	}
}

func appendFloats(b []byte, values []float32) []byte {
	for _, v := range values {
		b = append(b, ' ')
		b = strconv.AppendFloat(b, float64(v), 'f', -1, 32)
	}
	return b
}
