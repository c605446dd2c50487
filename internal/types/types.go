package types

import "fmt"

// WindowState is how a managed window participates in layout
type WindowState string

const (
	StateTiling     WindowState = "tiling"
	StateFloating   WindowState = "floating"
	StateMinimized  WindowState = "minimized"
	StateFullscreen WindowState = "fullscreen"
)

// AllWindowStates lists every window state in a stable order
var AllWindowStates = []WindowState{StateTiling, StateFloating, StateMinimized, StateFullscreen}

// IsTiling reports whether the state takes part in tiling layout
func (s WindowState) IsTiling() bool {
	return s == StateTiling
}

// Valid reports whether s is one of the known states
func (s WindowState) Valid() bool {
	switch s {
	case StateTiling, StateFloating, StateMinimized, StateFullscreen:
		return true
	default:
		return false
	}
}

// ParseWindowState converts a string to WindowState
func ParseWindowState(s string) (WindowState, error) {
	ws := WindowState(s)
	if !ws.Valid() {
		return "", fmt.Errorf("unknown window state: %q", s)
	}
	return ws, nil
}

// TilingDirection is the axis along which a split lays out its children
type TilingDirection string

const (
	TilingHorizontal TilingDirection = "horizontal"
	TilingVertical   TilingDirection = "vertical"
)

// Inverse returns the other tiling direction
func (d TilingDirection) Inverse() TilingDirection {
	if d == TilingVertical {
		return TilingHorizontal
	}
	return TilingVertical
}

// Valid reports whether d is a known tiling direction
func (d TilingDirection) Valid() bool {
	return d == TilingHorizontal || d == TilingVertical
}

// ParseTilingDirection converts a string to TilingDirection
func ParseTilingDirection(s string) (TilingDirection, error) {
	d := TilingDirection(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown tiling direction: %q", s)
	}
	return d, nil
}

// Rect represents pixel bounds on screen
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Point represents a 2D coordinate
type Point struct {
	X float64
	Y float64
}

// Center returns the center point of a Rect
func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Contains checks if a point is inside the rect
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlap returns the area of intersection between two Rects
func (r Rect) Overlap(other Rect) float64 {
	left := max(r.X, other.X)
	right := min(r.X+r.Width, other.X+other.Width)
	top := max(r.Y, other.Y)
	bottom := min(r.Y+r.Height, other.Y+other.Height)

	if left >= right || top >= bottom {
		return 0
	}
	return (right - left) * (bottom - top)
}

// Direction represents navigation direction
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection converts a string to Direction
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	default:
		return 0, false
	}
}

// TilingDirection returns the tiling axis a direction moves along
func (d Direction) TilingDirection() TilingDirection {
	if d == DirUp || d == DirDown {
		return TilingVertical
	}
	return TilingHorizontal
}

// Forward reports whether the direction moves towards higher child indices
func (d Direction) Forward() bool {
	return d == DirRight || d == DirDown
}
