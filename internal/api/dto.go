package api

import (
	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/pkg/math"
)

type gridResponse struct {
	CellsX      int `json:"cells_x"`
	CellsZ      int `json:"cells_z"`
	Chunks      int `json:"chunks"`
	DirtyChunks int `json:"dirty_chunks"`
}

type cellResponse struct {
	X             int                `json:"x"`
	Z             int                `json:"z"`
	Coordinates   string             `json:"coordinates"`
	Chunk         int                `json:"chunk"`
	Elevation     int                `json:"elevation"`
	WaterLevel    int                `json:"water_level"`
	Underwater    bool               `json:"underwater"`
	Color         string             `json:"color"`
	UrbanLevel    int                `json:"urban_level"`
	FarmLevel     int                `json:"farm_level"`
	PlantLevel    int                `json:"plant_level"`
	Walled        bool               `json:"walled"`
	IncomingRiver *hexmap.Direction  `json:"incoming_river"`
	OutgoingRiver *hexmap.Direction  `json:"outgoing_river"`
	Roads         []hexmap.Direction `json:"roads"`
	Position      [3]float32         `json:"position"`
}

func newCellResponse(c *hexmap.Cell) cellResponse {
	x, z := c.Coordinates().Offset()
	r := cellResponse{
		X:           x,
		Z:           z,
		Coordinates: c.Coordinates().String(),
		Chunk:       c.Chunk().Index(),
		Elevation:   c.Elevation(),
		WaterLevel:  c.WaterLevel(),
		Underwater:  c.IsUnderwater(),
		Color:       c.Color().String(),
		UrbanLevel:  c.UrbanLevel(),
		FarmLevel:   c.FarmLevel(),
		PlantLevel:  c.PlantLevel(),
		Walled:      c.Walled(),
		Roads:       []hexmap.Direction{},
		Position:    vec3(c.Position()),
	}
	if c.HasIncomingRiver() {
		d := c.IncomingRiver()
		r.IncomingRiver = &d
	}
	if c.HasOutgoingRiver() {
		d := c.OutgoingRiver()
		r.OutgoingRiver = &d
	}
	for _, d := range hexmap.Directions {
		if c.HasRoadThroughEdge(d) {
			r.Roads = append(r.Roads, d)
		}
	}
	return r
}

// cellEdit is a partial update; nil fields are left alone.
type cellEdit struct {
	Elevation  *int    `json:"elevation"`
	WaterLevel *int    `json:"water_level"`
	Color      *string `json:"color"`
	UrbanLevel *int    `json:"urban_level"`
	FarmLevel  *int    `json:"farm_level"`
	PlantLevel *int    `json:"plant_level"`
	Walled     *bool   `json:"walled"`
}

// parse validates the edit before anything is applied.
func (e cellEdit) parse() (*math.Color, error) {
	if e.Color == nil {
		return nil, nil
	}
	c, err := math.ParseHexColor(*e.Color)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (e cellEdit) apply(c *hexmap.Cell, color *math.Color) {
	if color != nil {
		c.SetColor(*color)
	}
	if e.Elevation != nil {
		c.SetElevation(*e.Elevation)
	}
	if e.WaterLevel != nil {
		c.SetWaterLevel(*e.WaterLevel)
	}
	if e.UrbanLevel != nil {
		c.SetUrbanLevel(*e.UrbanLevel)
	}
	if e.FarmLevel != nil {
		c.SetFarmLevel(*e.FarmLevel)
	}
	if e.PlantLevel != nil {
		c.SetPlantLevel(*e.PlantLevel)
	}
	if e.Walled != nil {
		c.SetWalled(*e.Walled)
	}
}

type directionRequest struct {
	Direction *hexmap.Direction `json:"direction" binding:"required"`
}

type brushRequest struct {
	X      int `json:"x"`
	Z      int `json:"z"`
	Radius int `json:"radius"`
	cellEdit
}

type refreshResponse struct {
	Refreshed int `json:"refreshed"`
}

type editResponse struct {
	Cells     []cellResponse `json:"cells"`
	Refreshed int            `json:"refreshed"`
}

type layerPayload struct {
	Indices   []uint32  `json:"indices"`
	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors,omitempty"`
	UVs       []float32 `json:"uvs,omitempty"`
	UV2s      []float32 `json:"uv2s,omitempty"`
}

type featurePayload struct {
	Prefab   string     `json:"prefab"`
	Category string     `json:"category"`
	Size     [3]float32 `json:"size"`
	Position [3]float32 `json:"position"`
	Rotation float32    `json:"rotation"`
}

type chunkPayload struct {
	Index      int                     `json:"index"`
	Generation uint64                  `json:"generation"`
	Layers     map[string]layerPayload `json:"layers"`
	Features   []featurePayload        `json:"features"`
}

func newChunkPayload(c *hexmap.Chunk) chunkPayload {
	p := chunkPayload{
		Index:      c.Index(),
		Generation: c.Generation(),
		Layers:     make(map[string]layerPayload, hexmap.LayerCount),
		Features:   make([]featurePayload, 0, len(c.Features())),
	}
	for _, l := range hexmap.Layers {
		g := c.Geometry(l)
		if g.Empty() {
			continue
		}
		p.Layers[l.String()] = layerPayload{
			Indices:   g.Indices,
			Positions: g.Positions,
			Colors:    g.Colors,
			UVs:       g.UVs,
			UV2s:      g.UV2s,
		}
	}
	for _, f := range c.Features() {
		p.Features = append(p.Features, featurePayload{
			Prefab:   f.Prefab.Name,
			Category: f.Prefab.Category.String(),
			Size:     vec3(f.Prefab.Size),
			Position: vec3(f.Position),
			Rotation: f.Rotation,
		})
	}
	return p
}

func vec3(v math.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}
