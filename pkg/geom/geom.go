// Package geom provides the small amount of planar geometry the layout and
// products packages share: tile-space points and 8-step facing directions.
//
// Directions use an 8-unit scale where one cardinal step is 2 units:
// 0 faces north, 2 east, 4 south and 6 west. Odd values are diagonals and are
// accepted but never produced by [RotateCW]. North is negative Y, matching the
// screen-space convention of the layouts this package describes.
package geom

import (
	"fmt"
	"math"
)

// Point is a position or offset in tile space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Scale returns p multiplied by k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Rotate turns an offset expressed for a north-facing object so that it
// applies to an object facing d. Only cardinal directions rotate; diagonal
// directions are truncated to the preceding cardinal.
func (p Point) Rotate(d Direction) Point {
	switch d.Normalize() / 2 {
	case 1:
		return Point{X: -p.Y, Y: p.X}
	case 2:
		return Point{X: -p.X, Y: -p.Y}
	case 3:
		return Point{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// Tile returns the integer tile containing p. Tile centers sit on integer
// coordinates, so a point rounds to its nearest center.
func (p Point) Tile() Tile {
	return Tile{X: int(math.Floor(p.X + 0.5)), Y: int(math.Floor(p.Y + 0.5))}
}

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Tile addresses one grid cell by its integer center.
type Tile struct {
	X, Y int
}

// Center returns the point at the middle of the tile.
func (t Tile) Center() Point { return Point{X: float64(t.X), Y: float64(t.Y)} }

// Direction is a facing on the 8-unit scale.
type Direction int

// Cardinal directions.
const (
	North Direction = 0
	East  Direction = 2
	South Direction = 4
	West  Direction = 6
)

// Normalize folds d into the range 0..7.
func (d Direction) Normalize() Direction {
	return ((d % 8) + 8) % 8
}

// RotateCW turns d clockwise by the given number of cardinal steps.
// Negative steps rotate counter-clockwise.
func RotateCW(d Direction, steps int) Direction {
	return (d + Direction(steps*2) + 8).Normalize()
}

func (d Direction) String() string {
	switch d.Normalize() {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts a cardinal name or its numeric value.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "north", "n", "0":
		return North, nil
	case "east", "e", "2":
		return East, nil
	case "south", "s", "4":
		return South, nil
	case "west", "w", "6":
		return West, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Footprint returns the inclusive tile range covered by an object of the
// given size centered at c.
func Footprint(c, size Point) (lo, hi Tile) {
	lo = Tile{X: int(math.Floor(c.X - size.X/2 + 0.5)), Y: int(math.Floor(c.Y - size.Y/2 + 0.5))}
	hi = Tile{X: int(math.Ceil(c.X + size.X/2 - 0.5)), Y: int(math.Ceil(c.Y + size.Y/2 - 0.5))}
	return lo, hi
}
