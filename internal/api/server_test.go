package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Faultbox/hexmap/internal/hexmap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer serves two chunks of 3x3 cells side by side.
func newTestServer(t *testing.T) (*Server, *hexmap.Grid) {
	t.Helper()
	m, err := hexmap.NewMetrics(hexmap.DefaultSettings(), hexmap.FlatNoise)
	if err != nil {
		t.Fatal(err)
	}
	g, err := hexmap.NewGrid(m, hexmap.Options{ChunkCountX: 2, ChunkCountZ: 1, ChunkSizeX: 3, ChunkSizeZ: 3})
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.Workers = 2
	s, err := NewServer(g, opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s, g
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

func TestGridAndRefresh(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/grid", "")
	expectStatus(t, w, http.StatusOK)
	info := decode[gridResponse](t, w)
	if info.CellsX != 6 || info.CellsZ != 3 || info.Chunks != 2 || info.DirtyChunks != 2 {
		t.Errorf("grid = %+v", info)
	}

	w = do(t, s, http.MethodPost, "/api/refresh", "")
	expectStatus(t, w, http.StatusOK)
	if r := decode[refreshResponse](t, w); r.Refreshed != 2 {
		t.Errorf("refreshed = %d", r.Refreshed)
	}
	w = do(t, s, http.MethodPost, "/api/refresh", "")
	if r := decode[refreshResponse](t, w); r.Refreshed != 0 {
		t.Errorf("second refresh = %d", r.Refreshed)
	}
	w = do(t, s, http.MethodPost, "/api/refresh?all=true", "")
	if r := decode[refreshResponse](t, w); r.Refreshed != 2 {
		t.Errorf("full refresh = %d", r.Refreshed)
	}
}

func TestGetCell(t *testing.T) {
	s, g := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/cells/4/2", "")
	expectStatus(t, w, http.StatusOK)
	cell := decode[cellResponse](t, w)
	if cell.X != 4 || cell.Z != 2 || cell.Chunk != 1 {
		t.Errorf("cell = %+v", cell)
	}
	if cell.Coordinates != g.CellByOffset(4, 2).Coordinates().String() {
		t.Errorf("coordinates = %q", cell.Coordinates)
	}

	expectStatus(t, do(t, s, http.MethodGet, "/api/cells/6/0", ""), http.StatusNotFound)
	expectStatus(t, do(t, s, http.MethodGet, "/api/cells/x/0", ""), http.StatusBadRequest)
}

func TestCellAt(t *testing.T) {
	s, g := newTestServer(t)
	p := g.CellByOffset(2, 1).Position()

	w := do(t, s, http.MethodGet, "/api/cells/at?x="+ftoa(p.X)+"&z="+ftoa(p.Z), "")
	expectStatus(t, w, http.StatusOK)
	if cell := decode[cellResponse](t, w); cell.X != 2 || cell.Z != 1 {
		t.Errorf("cell at %v = (%d,%d)", p, cell.X, cell.Z)
	}
	expectStatus(t, do(t, s, http.MethodGet, "/api/cells/at?x=-100&z=0", ""), http.StatusNotFound)
	expectStatus(t, do(t, s, http.MethodGet, "/api/cells/at?x=abc&z=0", ""), http.StatusBadRequest)
}

func ftoa(v float32) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestPatchCell(t *testing.T) {
	s, g := newTestServer(t)

	w := do(t, s, http.MethodPatch, "/api/cells/1/1", `{"elevation":2,"color":"#ff0000","urban_level":7,"walled":true}`)
	expectStatus(t, w, http.StatusOK)
	resp := decode[editResponse](t, w)
	if resp.Refreshed != 2 {
		t.Errorf("refreshed = %d", resp.Refreshed)
	}
	got := resp.Cells[0]
	if got.Elevation != 2 || got.Color != "#ff0000" || got.UrbanLevel != hexmap.MaxFeatureLevel || !got.Walled {
		t.Errorf("cell = %+v", got)
	}
	if g.DirtyChunks() != 0 {
		t.Error("auto refresh left dirty chunks")
	}

	// A bad color rejects the whole edit.
	w = do(t, s, http.MethodPatch, "/api/cells/1/1", `{"elevation":5,"color":"red"}`)
	expectStatus(t, w, http.StatusBadRequest)
	if e := g.CellByOffset(1, 1).Elevation(); e != 2 {
		t.Errorf("elevation after rejected edit = %d", e)
	}
	expectStatus(t, do(t, s, http.MethodPatch, "/api/cells/1/1", `{"elevation":"high"}`), http.StatusBadRequest)
}

func TestRiverAndRoads(t *testing.T) {
	s, _ := newTestServer(t)
	expectStatus(t, do(t, s, http.MethodPatch, "/api/cells/0/0", `{"elevation":1}`), http.StatusOK)

	w := do(t, s, http.MethodPost, "/api/cells/0/0/river", `{"direction":"E"}`)
	expectStatus(t, w, http.StatusOK)
	resp := decode[editResponse](t, w)
	if len(resp.Cells) != 2 {
		t.Fatalf("cells = %d", len(resp.Cells))
	}
	if out := resp.Cells[0].OutgoingRiver; out == nil || *out != hexmap.E {
		t.Errorf("outgoing = %v", out)
	}
	if in := resp.Cells[1].IncomingRiver; in == nil || *in != hexmap.W {
		t.Errorf("incoming = %v", in)
	}

	// Roads never share an edge with a river.
	w = do(t, s, http.MethodPost, "/api/cells/0/0/roads", `{"direction":"E"}`)
	if roads := decode[editResponse](t, w).Cells[0].Roads; len(roads) != 0 {
		t.Errorf("road over river: %v", roads)
	}
	w = do(t, s, http.MethodPost, "/api/cells/0/0/roads", `{"direction":"ne"}`)
	if roads := decode[editResponse](t, w).Cells[0].Roads; len(roads) != 1 || roads[0] != hexmap.NE {
		t.Errorf("roads = %v", roads)
	}
	w = do(t, s, http.MethodDelete, "/api/cells/0/0/roads/NE", "")
	if roads := decode[editResponse](t, w).Cells[0].Roads; len(roads) != 0 {
		t.Errorf("roads after delete = %v", roads)
	}

	w = do(t, s, http.MethodDelete, "/api/cells/0/0/river", "")
	if c := decode[editResponse](t, w).Cells[0]; c.OutgoingRiver != nil || c.IncomingRiver != nil {
		t.Errorf("river after delete = %+v", c)
	}

	expectStatus(t, do(t, s, http.MethodPost, "/api/cells/0/0/river", `{"direction":"N"}`), http.StatusBadRequest)
	expectStatus(t, do(t, s, http.MethodPost, "/api/cells/0/0/river", `{}`), http.StatusBadRequest)
	expectStatus(t, do(t, s, http.MethodDelete, "/api/cells/0/0/roads/up", ""), http.StatusBadRequest)
}

func TestBrush(t *testing.T) {
	s, g := newTestServer(t)
	w := do(t, s, http.MethodPost, "/api/brush", `{"x":2,"z":1,"radius":1,"elevation":1,"plant_level":2}`)
	expectStatus(t, w, http.StatusOK)
	resp := decode[editResponse](t, w)
	if len(resp.Cells) != 7 {
		t.Fatalf("brush touched %d cells", len(resp.Cells))
	}
	for _, c := range resp.Cells {
		if c.Elevation != 1 || c.PlantLevel != 2 {
			t.Errorf("cell (%d,%d) = %+v", c.X, c.Z, c)
		}
	}
	if g.CellByOffset(5, 2).Elevation() != 0 {
		t.Error("brush reached a distant cell")
	}

	expectStatus(t, do(t, s, http.MethodPost, "/api/brush", `{"x":2,"z":1,"radius":-1}`), http.StatusBadRequest)
	expectStatus(t, do(t, s, http.MethodPost, "/api/brush", `{"x":20,"z":1}`), http.StatusNotFound)
}

func TestChunkCache(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/refresh", "")

	first := do(t, s, http.MethodGet, "/api/chunks/0", "")
	expectStatus(t, first, http.StatusOK)
	if first.Header().Get("X-Cache") != "miss" {
		t.Errorf("first request cache = %q", first.Header().Get("X-Cache"))
	}
	payload := decode[chunkPayload](t, first)
	if payload.Generation != 1 || len(payload.Layers["terrain"].Indices) == 0 {
		t.Fatalf("payload generation %d, %d terrain indices", payload.Generation, len(payload.Layers["terrain"].Indices))
	}

	second := do(t, s, http.MethodGet, "/api/chunks/0", "")
	if second.Header().Get("X-Cache") != "hit" {
		t.Errorf("second request cache = %q", second.Header().Get("X-Cache"))
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("cached payload differs")
	}

	// An edit bumps the generation, so the cached payload is bypassed.
	do(t, s, http.MethodPatch, "/api/cells/1/1", `{"elevation":1}`)
	third := do(t, s, http.MethodGet, "/api/chunks/0", "")
	if third.Header().Get("X-Cache") != "miss" || third.Header().Get("X-Chunk-Generation") != "2" {
		t.Errorf("after edit: cache %q generation %q",
			third.Header().Get("X-Cache"), third.Header().Get("X-Chunk-Generation"))
	}

	expectStatus(t, do(t, s, http.MethodGet, "/api/chunks/2", ""), http.StatusNotFound)
	expectStatus(t, do(t, s, http.MethodGet, "/api/chunks/first", ""), http.StatusBadRequest)
}

func TestChunkDirtyHeader(t *testing.T) {
	s, g := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/chunks/1", "")
	if w.Header().Get("X-Chunk-Dirty") != "true" {
		t.Errorf("unrefreshed chunk dirty header = %q", w.Header().Get("X-Chunk-Dirty"))
	}
	g.RefreshDirty()
	w = do(t, s, http.MethodGet, "/api/chunks/1", "")
	if w.Header().Get("X-Chunk-Dirty") != "false" {
		t.Errorf("refreshed chunk dirty header = %q", w.Header().Get("X-Chunk-Dirty"))
	}
}

func TestChunkOBJ(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/refresh", "")
	w := do(t, s, http.MethodGet, "/api/chunks/1/obj", "")
	expectStatus(t, w, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "o chunk1_terrain\n") || strings.Contains(body, "chunk0") {
		t.Errorf("unexpected OBJ output:\n%.200s", body)
	}
}
