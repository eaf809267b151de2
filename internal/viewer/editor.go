package viewer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/hexmap"
	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/pkg/math"
)

// Toggle is a tri-state brush option for rivers, roads and walls.
type Toggle int

const (
	ToggleIgnore Toggle = iota
	ToggleAdd
	ToggleRemove
)

func (t Toggle) String() string {
	switch t {
	case ToggleAdd:
		return "+"
	case ToggleRemove:
		return "-"
	default:
		return "."
	}
}

// Next cycles ignore, add, remove.
func (t Toggle) Next() Toggle {
	return (t + 1) % 3
}

// Setting is an integer brush value that is only applied when enabled.
type Setting struct {
	Enabled bool
	Value   int
}

// Brush holds what a stroke writes into each cell it touches.
type Brush struct {
	Size int

	ColorEnabled bool
	Color        math.Color

	Elevation Setting
	Water     Setting
	Urban     Setting
	Farm      Setting
	Plant     Setting

	River  Toggle
	Road   Toggle
	Walled Toggle
}

func (b Brush) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "size %d", b.Size)
	if b.ColorEnabled {
		fmt.Fprintf(&sb, " color %s", b.Color)
	}
	for _, s := range []struct {
		name string
		s    Setting
	}{
		{"elev", b.Elevation}, {"water", b.Water},
		{"urban", b.Urban}, {"farm", b.Farm}, {"plant", b.Plant},
	} {
		if s.s.Enabled {
			fmt.Fprintf(&sb, " %s %d", s.name, s.s.Value)
		}
	}
	fmt.Fprintf(&sb, " river %s road %s wall %s", b.River, b.Road, b.Walled)
	return sb.String()
}

// Editor applies brush strokes to a grid. A stroke that moves from a cell
// into a neighbor is a drag and draws rivers and roads across the shared
// edge.
type Editor struct {
	grid  *hexmap.Grid
	Brush Brush

	previous *hexmap.Cell
	dragDir  hexmap.Direction
	log      *zap.Logger
}

// NewEditor creates an editor with an empty brush.
func NewEditor(grid *hexmap.Grid) *Editor {
	return &Editor{grid: grid, log: logger.Named("editor")}
}

// Stroke continues the current stroke over cell and returns how many cells
// were edited. Hovering over the same cell again edits nothing.
func (e *Editor) Stroke(cell *hexmap.Cell) int {
	if cell == nil {
		e.EndStroke()
		return 0
	}
	if cell == e.previous {
		return 0
	}

	drag := false
	if e.previous != nil {
		e.dragDir, drag = e.previous.DirectionTo(cell)
	}

	cells := e.grid.CellsInRange(cell.Coordinates(), e.Brush.Size)
	for _, c := range cells {
		e.editCell(c, drag)
	}
	e.previous = cell

	e.log.Debug("stroke",
		zap.Stringer("cell", cell.Coordinates()),
		zap.Bool("drag", drag),
		zap.Int("cells", len(cells)))
	return len(cells)
}

// EndStroke forgets the previous cell so the next stroke is not a drag.
func (e *Editor) EndStroke() {
	e.previous = nil
}

func (e *Editor) editCell(cell *hexmap.Cell, drag bool) {
	b := &e.Brush
	if b.ColorEnabled {
		cell.SetColor(b.Color)
	}
	if b.Elevation.Enabled {
		cell.SetElevation(b.Elevation.Value)
	}
	if b.Water.Enabled {
		cell.SetWaterLevel(b.Water.Value)
	}
	if b.Urban.Enabled {
		cell.SetUrbanLevel(b.Urban.Value)
	}
	if b.Farm.Enabled {
		cell.SetFarmLevel(b.Farm.Value)
	}
	if b.Plant.Enabled {
		cell.SetPlantLevel(b.Plant.Value)
	}
	if b.River == ToggleRemove {
		cell.RemoveRiver()
	}
	if b.Road == ToggleRemove {
		cell.RemoveRoads()
	}
	if b.Walled != ToggleIgnore {
		cell.SetWalled(b.Walled == ToggleAdd)
	}

	if !drag {
		return
	}
	// the drag arrives at cell, so the edge belongs to the cell behind it
	other := cell.Neighbor(e.dragDir.Opposite())
	if other == nil {
		return
	}
	if b.River == ToggleAdd {
		other.SetOutgoingRiver(e.dragDir)
	}
	if b.Road == ToggleAdd {
		other.AddRoad(e.dragDir)
	}
}
