package output

import (
	"github.com/yourusername/tilewm/internal/types"
)

// Terminal cells are roughly twice as tall as they are wide
const aspectRatio = 2.0

// ScalingContext maps a monitor's pixel space onto a terminal canvas,
// leaving a one-cell border for the monitor outline.
type ScalingContext struct {
	Bounds     types.Rect
	TermWidth  int
	TermHeight int
	ScaleX     float64
	ScaleY     float64
}

// NewScalingContext fits bounds into a termWidth x termHeight canvas. Zero
// sized bounds fall back to 1920x1080.
func NewScalingContext(bounds types.Rect, termWidth, termHeight int) *ScalingContext {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = types.Rect{X: bounds.X, Y: bounds.Y, Width: 1920, Height: 1080}
	}

	availWidth := termWidth - 2
	availHeight := termHeight - 2
	if availWidth < 10 {
		availWidth = 10
	}
	if availHeight < 5 {
		availHeight = 5
	}

	return &ScalingContext{
		Bounds:     bounds,
		TermWidth:  termWidth,
		TermHeight: termHeight,
		ScaleX:     float64(availWidth) / bounds.Width,
		ScaleY:     float64(availHeight) * aspectRatio / bounds.Height,
	}
}

// Project converts a pixel rect to a canvas box, clamped to the canvas and
// at least 3x2 cells
func (sc *ScalingContext) Project(r types.Rect) (x, y, w, h int) {
	x = int((r.X-sc.Bounds.X)*sc.ScaleX) + 1
	y = int((r.Y-sc.Bounds.Y)*sc.ScaleY/aspectRatio) + 1
	w = int(r.Width * sc.ScaleX)
	h = int(r.Height * sc.ScaleY / aspectRatio)

	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > sc.TermWidth {
		w = sc.TermWidth - x
	}
	if y+h > sc.TermHeight {
		h = sc.TermHeight - y
	}
	if w < 3 {
		w = 3
	}
	if h < 2 {
		h = 2
	}
	return x, y, w, h
}
