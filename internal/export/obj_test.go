package export

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Faultbox/hexmap/internal/hexmap"
)

func newGrid(t *testing.T) *hexmap.Grid {
	t.Helper()
	m, err := hexmap.NewMetrics(hexmap.DefaultSettings(), hexmap.FlatNoise)
	if err != nil {
		t.Fatal(err)
	}
	g, err := hexmap.NewGrid(m, hexmap.Options{ChunkCountX: 2, ChunkCountZ: 1, ChunkSizeX: 2, ChunkSizeZ: 2})
	if err != nil {
		t.Fatal(err)
	}
	src := g.CellByOffset(0, 0)
	src.SetElevation(1)
	src.SetOutgoingRiver(hexmap.E)
	g.RefreshAll()
	return g
}

type parsed struct {
	objects  []string
	v, vt, f int
	maxV     int
	maxVT    int
}

func parse(t *testing.T, data []byte) parsed {
	t.Helper()
	var p parsed
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "o":
			p.objects = append(p.objects, fields[1])
		case "v":
			p.v++
			if len(fields) != 4 && len(fields) != 7 {
				t.Fatalf("bad vertex line %q", sc.Text())
			}
		case "vt":
			p.vt++
		case "f":
			p.f++
			if len(fields) != 4 {
				t.Fatalf("bad face line %q", sc.Text())
			}
			for _, ref := range fields[1:] {
				parts := strings.Split(ref, "/")
				v, err := strconv.Atoi(parts[0])
				if err != nil {
					t.Fatal(err)
				}
				p.maxV = max(p.maxV, v)
				if len(parts) == 2 {
					vt, err := strconv.Atoi(parts[1])
					if err != nil {
						t.Fatal(err)
					}
					p.maxVT = max(p.maxVT, vt)
				}
			}
		}
	}
	return p
}

func TestWriteOBJ(t *testing.T) {
	g := newGrid(t)
	var buf bytes.Buffer
	stats, err := WriteOBJ(&buf, g, Options{})
	if err != nil {
		t.Fatal(err)
	}

	wantV, wantT, wantUV, wantObjects := 0, 0, 0, 0
	for _, c := range g.Chunks() {
		for _, l := range hexmap.Layers {
			geo := c.Geometry(l)
			if geo.Empty() {
				continue
			}
			wantObjects++
			wantV += geo.VertexCount()
			wantT += geo.TriangleCount()
			if l.Format().UVs {
				wantUV += geo.VertexCount()
			}
		}
	}

	p := parse(t, buf.Bytes())
	if stats.Objects != wantObjects || len(p.objects) != wantObjects {
		t.Errorf("objects = %d/%d, want %d", stats.Objects, len(p.objects), wantObjects)
	}
	if stats.Vertices != wantV || p.v != wantV {
		t.Errorf("vertices = %d/%d, want %d", stats.Vertices, p.v, wantV)
	}
	if stats.Triangles != wantT || p.f != wantT {
		t.Errorf("faces = %d/%d, want %d", stats.Triangles, p.f, wantT)
	}
	if p.vt != wantUV || wantUV == 0 {
		t.Errorf("texture coords = %d, want %d", p.vt, wantUV)
	}
	if p.maxV > p.v || p.maxVT > p.vt {
		t.Errorf("face index out of range: v %d/%d vt %d/%d", p.maxV, p.v, p.maxVT, p.vt)
	}
	if p.objects[0] != "chunk0_terrain" {
		t.Errorf("first object = %q", p.objects[0])
	}
}

func TestWriteOBJFilters(t *testing.T) {
	g := newGrid(t)
	var buf bytes.Buffer
	stats, err := WriteOBJ(&buf, g, Options{
		Layers: []hexmap.Layer{hexmap.LayerRivers},
		Chunks: []int{0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Objects != 1 {
		t.Fatalf("objects = %d, want 1", stats.Objects)
	}
	if want := g.Chunk(0).Geometry(hexmap.LayerRivers).TriangleCount(); stats.Triangles != want {
		t.Errorf("triangles = %d, want %d", stats.Triangles, want)
	}
	if !strings.Contains(buf.String(), "o chunk0_rivers\n") {
		t.Error("missing river object")
	}

	if _, err := WriteOBJ(&buf, g, Options{Chunks: []int{5}}); err == nil {
		t.Error("exported a missing chunk")
	}
}

func TestSaveOBJ(t *testing.T) {
	g := newGrid(t)
	path := filepath.Join(t.TempDir(), "map.obj")
	stats, err := SaveOBJ(path, g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p := parse(t, data); p.f != stats.Triangles {
		t.Errorf("file has %d faces, stats say %d", p.f, stats.Triangles)
	}

	if _, err := SaveOBJ(filepath.Join(t.TempDir(), "missing", "map.obj"), g, Options{}); err == nil {
		t.Error("saved into a missing directory")
	}
}
