// Package hexmap implements the hex grid cell model and the chunk
// triangulator that turns cell state into terrain, river, road, water, shore,
// estuary and wall geometry.
package hexmap

import (
	"fmt"
	"strings"
)

// Direction names one of the six edges of a hex cell, clockwise from
// north-east.
type Direction int

// Hex directions.
const (
	NE Direction = iota
	E
	SE
	SW
	W
	NW
)

// Directions lists all six directions in triangulation order.
var Directions = [6]Direction{NE, E, SE, SW, W, NW}

var directionNames = [6]string{"NE", "E", "SE", "SW", "W", "NW"}

func (d Direction) String() string {
	if d < NE || d > NW {
		return "Direction(?)"
	}
	return directionNames[d]
}

// ParseDirection parses a direction name such as "NE", ignoring case.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("hexmap: unknown direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d < NE || d > NW {
		return nil, fmt.Errorf("hexmap: invalid direction %d", int(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Opposite returns the direction on the other side of the cell.
func (d Direction) Opposite() Direction {
	if d < 3 {
		return d + 3
	}
	return d - 3
}

// Previous returns the direction counter-clockwise from d.
func (d Direction) Previous() Direction {
	if d == NE {
		return NW
	}
	return d - 1
}

// Next returns the direction clockwise from d.
func (d Direction) Next() Direction {
	if d == NW {
		return NE
	}
	return d + 1
}

// Previous2 returns the direction two steps counter-clockwise from d.
func (d Direction) Previous2() Direction {
	d -= 2
	if d >= NE {
		return d
	}
	return d + 6
}

// Next2 returns the direction two steps clockwise from d.
func (d Direction) Next2() Direction {
	d += 2
	if d <= NW {
		return d
	}
	return d - 6
}
