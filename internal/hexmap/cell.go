package hexmap

import (
	"go.uber.org/zap"

	"github.com/Faultbox/hexmap/internal/logger"
	"github.com/Faultbox/hexmap/pkg/math"
)

// MaxFeatureLevel is the highest urban, farm or plant density.
const MaxFeatureLevel = 3

// Cell is one hex tile. Its coordinates never change; everything else is
// edited through setters that keep neighbor relations symmetric and mark the
// affected chunks dirty.
type Cell struct {
	coordinates Coordinates
	index       int
	position    math.Vec3
	color       math.Color

	elevation  int
	waterLevel int

	urbanLevel int
	farmLevel  int
	plantLevel int
	walled     bool

	hasIncomingRiver bool
	hasOutgoingRiver bool
	incomingRiver    Direction
	outgoingRiver    Direction

	roads     [6]bool
	neighbors [6]*Cell

	chunk   *Chunk
	metrics *Metrics
}

func newCell(m *Metrics, coords Coordinates, index int, position math.Vec3, color math.Color) *Cell {
	c := &Cell{
		coordinates: coords,
		index:       index,
		position:    position,
		color:       color,
		metrics:     m,
	}
	c.updatePosition()
	return c
}

// Coordinates returns the cube coordinates of the cell.
func (c *Cell) Coordinates() Coordinates { return c.coordinates }

// Index returns the position of the cell in the grid's cell array.
func (c *Cell) Index() int { return c.index }

// Position returns the world position of the cell center, including the
// vertical elevation perturbation.
func (c *Cell) Position() math.Vec3 { return c.position }

// Chunk returns the chunk that owns the cell.
func (c *Cell) Chunk() *Chunk { return c.chunk }

// Neighbor returns the adjacent cell in direction d, or nil at the grid edge.
func (c *Cell) Neighbor(d Direction) *Cell {
	return c.neighbors[d]
}

// SetNeighbor links c and other in both directions.
func (c *Cell) SetNeighbor(d Direction, other *Cell) {
	c.neighbors[d] = other
	if other != nil {
		other.neighbors[d.Opposite()] = c
	}
}

// DirectionTo returns the direction in which other neighbors c.
func (c *Cell) DirectionTo(other *Cell) (Direction, bool) {
	if other == nil {
		return 0, false
	}
	for _, d := range Directions {
		if c.neighbors[d] == other {
			return d, true
		}
	}
	return 0, false
}

// Color returns the flat terrain color of the cell.
func (c *Cell) Color() math.Color { return c.color }

// SetColor changes the terrain color.
func (c *Cell) SetColor(color math.Color) {
	if c.color == color {
		return
	}
	c.color = color
	c.refresh()
}

// Elevation returns the terrain level.
func (c *Cell) Elevation() int { return c.elevation }

// SetElevation moves the cell up or down. Rivers that would flow uphill and
// roads across steep edges are removed.
func (c *Cell) SetElevation(elevation int) {
	if c.elevation == elevation {
		return
	}
	c.elevation = elevation
	c.updatePosition()
	c.validateRivers()

	for _, d := range Directions {
		if c.roads[d] && c.ElevationDifference(d) > 1 {
			c.setRoad(d, false)
		}
	}
	c.refresh()
}

func (c *Cell) updatePosition() {
	y := float32(c.elevation) * c.metrics.ElevationStep
	y += (c.metrics.SampleNoise(c.position).Y*2 - 1) * c.metrics.ElevationPerturbStrength
	c.position.Y = y
}

// WaterLevel returns the water surface level.
func (c *Cell) WaterLevel() int { return c.waterLevel }

// SetWaterLevel floods or drains the cell.
func (c *Cell) SetWaterLevel(level int) {
	if c.waterLevel == level {
		return
	}
	c.waterLevel = level
	c.validateRivers()
	c.refresh()
}

// IsUnderwater reports whether the water surface lies above the terrain.
func (c *Cell) IsUnderwater() bool {
	return c.waterLevel > c.elevation
}

// StreamBedY is the height of the river bed at the cell.
func (c *Cell) StreamBedY() float32 {
	return (float32(c.elevation) + StreamBedElevationOffset) * c.metrics.ElevationStep
}

// RiverSurfaceY is the height of a river surface at the cell.
func (c *Cell) RiverSurfaceY() float32 {
	return (float32(c.elevation) + WaterElevationOffset) * c.metrics.ElevationStep
}

// WaterSurfaceY is the height of open water covering the cell.
func (c *Cell) WaterSurfaceY() float32 {
	return (float32(c.waterLevel) + WaterElevationOffset) * c.metrics.ElevationStep
}

// EdgeType classifies the edge towards the neighbor in direction d.
func (c *Cell) EdgeType(d Direction) EdgeType {
	return EdgeTypeOf(c.elevation, c.neighbors[d].elevation)
}

// EdgeTypeWith classifies the connection between c and other.
func (c *Cell) EdgeTypeWith(other *Cell) EdgeType {
	return EdgeTypeOf(c.elevation, other.elevation)
}

// ElevationDifference returns the absolute elevation difference towards the
// neighbor in direction d.
func (c *Cell) ElevationDifference(d Direction) int {
	return absInt(c.elevation - c.neighbors[d].elevation)
}

// HasIncomingRiver reports whether a river flows into the cell.
func (c *Cell) HasIncomingRiver() bool { return c.hasIncomingRiver }

// HasOutgoingRiver reports whether a river flows out of the cell.
func (c *Cell) HasOutgoingRiver() bool { return c.hasOutgoingRiver }

// IncomingRiver is the edge the river enters through.
func (c *Cell) IncomingRiver() Direction { return c.incomingRiver }

// OutgoingRiver is the edge the river leaves through.
func (c *Cell) OutgoingRiver() Direction { return c.outgoingRiver }

// HasRiver reports whether any river touches the cell.
func (c *Cell) HasRiver() bool {
	return c.hasIncomingRiver || c.hasOutgoingRiver
}

// HasRiverBeginOrEnd reports whether the river starts or ends in the cell.
func (c *Cell) HasRiverBeginOrEnd() bool {
	return c.hasIncomingRiver != c.hasOutgoingRiver
}

// RiverBeginOrEndDirection is the only river edge of a source or sink cell.
func (c *Cell) RiverBeginOrEndDirection() Direction {
	if c.hasIncomingRiver {
		return c.incomingRiver
	}
	return c.outgoingRiver
}

// HasRiverThroughEdge reports whether the river crosses edge d.
func (c *Cell) HasRiverThroughEdge(d Direction) bool {
	return c.hasIncomingRiver && c.incomingRiver == d ||
		c.hasOutgoingRiver && c.outgoingRiver == d
}

func (c *Cell) isValidRiverDestination(neighbor *Cell) bool {
	return neighbor != nil && c.elevation >= neighbor.elevation
}

func (c *Cell) validateRivers() {
	if c.hasOutgoingRiver && !c.isValidRiverDestination(c.neighbors[c.outgoingRiver]) {
		c.RemoveOutgoingRiver()
	}
	if c.hasIncomingRiver && !c.neighbors[c.incomingRiver].isValidRiverDestination(c) {
		c.RemoveIncomingRiver()
	}
}

// SetOutgoingRiver starts a river through edge d. Rivers never flow uphill
// and need a neighbor; invalid requests are ignored.
func (c *Cell) SetOutgoingRiver(d Direction) {
	if c.hasOutgoingRiver && c.outgoingRiver == d {
		return
	}
	neighbor := c.neighbors[d]
	if !c.isValidRiverDestination(neighbor) {
		logger.Debug("river rejected",
			zap.Stringer("cell", c.coordinates),
			zap.Stringer("direction", d))
		return
	}

	c.RemoveOutgoingRiver()
	if c.hasIncomingRiver && c.incomingRiver == d {
		c.RemoveIncomingRiver()
	}
	c.hasOutgoingRiver = true
	c.outgoingRiver = d

	neighbor.RemoveIncomingRiver()
	neighbor.hasIncomingRiver = true
	neighbor.incomingRiver = d.Opposite()

	c.setRoad(d, false)
}

// RemoveOutgoingRiver clears the outgoing river and its downstream end.
func (c *Cell) RemoveOutgoingRiver() {
	if !c.hasOutgoingRiver {
		return
	}
	c.hasOutgoingRiver = false
	c.refreshSelfOnly()

	neighbor := c.neighbors[c.outgoingRiver]
	neighbor.hasIncomingRiver = false
	neighbor.refreshSelfOnly()
}

// RemoveIncomingRiver clears the incoming river and its upstream end.
func (c *Cell) RemoveIncomingRiver() {
	if !c.hasIncomingRiver {
		return
	}
	c.hasIncomingRiver = false
	c.refreshSelfOnly()

	neighbor := c.neighbors[c.incomingRiver]
	neighbor.hasOutgoingRiver = false
	neighbor.refreshSelfOnly()
}

// RemoveRiver clears both river ends.
func (c *Cell) RemoveRiver() {
	c.RemoveOutgoingRiver()
	c.RemoveIncomingRiver()
}

// HasRoadThroughEdge reports whether a road crosses edge d.
func (c *Cell) HasRoadThroughEdge(d Direction) bool {
	return c.roads[d]
}

// HasRoads reports whether any road touches the cell.
func (c *Cell) HasRoads() bool {
	for _, r := range c.roads {
		if r {
			return true
		}
	}
	return false
}

// AddRoad lays a road across edge d unless a river uses the edge or the
// edge is steeper than a single slope.
func (c *Cell) AddRoad(d Direction) {
	if c.roads[d] || c.neighbors[d] == nil {
		return
	}
	if c.HasRiverThroughEdge(d) || c.ElevationDifference(d) > 1 {
		logger.Debug("road rejected",
			zap.Stringer("cell", c.coordinates),
			zap.Stringer("direction", d))
		return
	}
	c.setRoad(d, true)
}

// RemoveRoad removes the road across edge d.
func (c *Cell) RemoveRoad(d Direction) {
	if c.roads[d] {
		c.setRoad(d, false)
	}
}

// RemoveRoads removes every road of the cell.
func (c *Cell) RemoveRoads() {
	for _, d := range Directions {
		c.RemoveRoad(d)
	}
}

func (c *Cell) setRoad(d Direction, state bool) {
	neighbor := c.neighbors[d]
	if neighbor == nil {
		return
	}
	c.roads[d] = state
	neighbor.roads[d.Opposite()] = state
	neighbor.refreshSelfOnly()
	c.refreshSelfOnly()
}

// UrbanLevel returns the urban feature density.
func (c *Cell) UrbanLevel() int { return c.urbanLevel }

// SetUrbanLevel sets the urban density, clamped to [0, MaxFeatureLevel].
func (c *Cell) SetUrbanLevel(level int) {
	c.setFeatureLevel(&c.urbanLevel, level)
}

// FarmLevel returns the farm feature density.
func (c *Cell) FarmLevel() int { return c.farmLevel }

// SetFarmLevel sets the farm density, clamped to [0, MaxFeatureLevel].
func (c *Cell) SetFarmLevel(level int) {
	c.setFeatureLevel(&c.farmLevel, level)
}

// PlantLevel returns the plant feature density.
func (c *Cell) PlantLevel() int { return c.plantLevel }

// SetPlantLevel sets the plant density, clamped to [0, MaxFeatureLevel].
func (c *Cell) SetPlantLevel(level int) {
	c.setFeatureLevel(&c.plantLevel, level)
}

func (c *Cell) setFeatureLevel(field *int, level int) {
	level = min(max(level, 0), MaxFeatureLevel)
	if *field == level {
		return
	}
	*field = level
	c.refreshSelfOnly()
}

// Walled reports whether the cell is enclosed by walls.
func (c *Cell) Walled() bool { return c.walled }

// SetWalled toggles walls. Walls sit on shared edges, so neighbors refresh
// as well.
func (c *Cell) SetWalled(walled bool) {
	if c.walled == walled {
		return
	}
	c.walled = walled
	c.refresh()
}

func (c *Cell) refresh() {
	if c.chunk == nil {
		return
	}
	c.chunk.MarkDirty()
	for _, neighbor := range c.neighbors {
		if neighbor != nil && neighbor.chunk != c.chunk {
			neighbor.chunk.MarkDirty()
		}
	}
}

func (c *Cell) refreshSelfOnly() {
	if c.chunk != nil {
		c.chunk.MarkDirty()
	}
}
