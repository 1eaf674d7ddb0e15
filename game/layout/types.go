package layout

import "math"

// Area names the region of the yard a slot belongs to
type Area string

const (
	Top        Area = "top"
	Bottom     Area = "bottom"
	Left       Area = "left"
	Right      Area = "right"
	TopYard    Area = "topYard"
	BottomYard Area = "bottomYard"
)

// Areas lists every known area in declaration order
var Areas = []Area{Top, Bottom, Left, Right, TopYard, BottomYard}

// Kind is the business classification of a slot
type Kind string

const (
	KindYard Kind = "yard"
	KindDock Kind = "dock"
)

// Orientation selects the slot footprint of an area
type Orientation string

const (
	Vertical   Orientation = "vertical"   // tall bays, used along top and bottom edges
	Horizontal Orientation = "horizontal" // wide bays, used along left and right edges
)

// Default slot footprints in canvas pixels
const (
	DefaultBayLength = 160.0
	DefaultBayWidth  = 100.0
)

// Point is a position on the canvas in pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p multiplied by k
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Distance returns the euclidean distance between p and q
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Size is a canvas extent
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis aligned rectangle anchored at its top-left corner
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the rectangle
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether the rectangle has no area
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Expand grows the rectangle by d on every side
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Contains reports whether p lies inside or on the edge of r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlaps reports whether r and o share interior area
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width && r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// SegmentCrosses reports whether the axis aligned segment a-b enters the
// interior of r. Running along an edge does not count. Diagonal segments are
// tested against their bounding box.
func (r Rect) SegmentCrosses(a, b Point) bool {
	box := Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
	return box.X < r.X+r.Width && r.X < box.X+box.Width &&
		box.Y < r.Y+r.Height && r.Y < box.Y+box.Height
}

// Valid reports whether a is one of the known areas
func (a Area) Valid() bool {
	switch a {
	case Top, Bottom, Left, Right, TopYard, BottomYard:
		return true
	}
	return false
}

// Family collapses the yard variants onto the edge they share geometry with
func (a Area) Family() Area {
	switch a {
	case TopYard:
		return Top
	case BottomYard:
		return Bottom
	}
	return a
}

// Heading is the rotation, in radians, a truck holds when docked in this area.
// Rotation 0 faces canvas-up and positive angles turn clockwise.
func (a Area) Heading() float64 {
	switch a.Family() {
	case Left:
		return math.Pi / 2
	case Right:
		return -math.Pi / 2
	case Top:
		return math.Pi
	default:
		return 0
	}
}

// ApproachDir is the unit vector from a slot centre toward its lane
func (a Area) ApproachDir() Point {
	switch a.Family() {
	case Left:
		return Point{X: 1}
	case Right:
		return Point{X: -1}
	case Top:
		return Point{Y: 1}
	default:
		return Point{Y: -1}
	}
}

// DefaultKind is the kind slots of this area get when the descriptor leaves it unset
func (a Area) DefaultKind() Kind {
	if a == Bottom {
		return KindDock
	}
	return KindYard
}

// DefaultOrientation returns the footprint used when the descriptor leaves it unset
func (a Area) DefaultOrientation() Orientation {
	switch a.Family() {
	case Left, Right:
		return Horizontal
	}
	return Vertical
}

// Slot is a single parking bay or dock door
type Slot struct {
	ID   int  `json:"id"`
	Rect Rect `json:"rect"`
	Area Area `json:"area"`
	Kind Kind `json:"kind"`
}

// Center returns the docked position of a truck in this slot
func (s Slot) Center() Point {
	return s.Rect.Center()
}

// Heading returns the docked rotation for this slot
func (s Slot) Heading() float64 {
	return s.Area.Heading()
}

// Lane returns the point in front of the slot where a truck lines up before
// backing in. offset is the clearance beyond the slot edge.
func (s Slot) Lane(offset float64) Point {
	dir := s.Area.ApproachDir()
	half := s.Rect.Height / 2
	if dir.X != 0 {
		half = s.Rect.Width / 2
	}
	return s.Center().Add(dir.Scale(half + offset))
}
