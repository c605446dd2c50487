package layout

import (
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/types"
)

// Arrange recomputes the Rect of c and its descendants from the owning
// monitor's bounds and the tiling size ratios. Floating windows use their
// floating rect, fullscreen windows cover the monitor and minimized windows
// keep their last rect.
func Arrange(tree *container.Tree, c *container.Container, gap float64) {
	switch c.Kind {
	case container.KindRoot:
		for _, m := range tree.Monitors() {
			Arrange(tree, m, gap)
		}
		return
	case container.KindMonitor:
		c.Rect = c.Monitor.Rect
		for _, ws := range tree.ChildrenOf(c) {
			ws.Rect = c.Rect
			arrangeChildren(tree, ws, gap)
		}
		return
	case container.KindWindow:
		// A window only owns its own rect; lay out the parent instead.
		if p, ok := tree.ParentOf(c); ok {
			Arrange(tree, p, gap)
		}
		return
	case container.KindWorkspace:
		if m := tree.MonitorOf(c); m != nil {
			c.Rect = m.Monitor.Rect
		}
	}
	arrangeChildren(tree, c, gap)
}

func arrangeChildren(tree *container.Tree, p *container.Container, gap float64) {
	dir, _ := p.TilingDirection()
	tiling := TilingChildren(tree, p)
	ratios := NormalizeRatios(ratiosOf(tiling))

	var bounds []types.Rect
	if dir == types.TilingVertical {
		bounds = calculateVerticalStack(p.Rect, ratios, gap)
	} else {
		bounds = calculateHorizontalStack(p.Rect, ratios, gap)
	}
	for i, child := range tiling {
		child.Rect = bounds[i]
		if child.Kind == container.KindSplit {
			arrangeChildren(tree, child, gap)
		}
	}

	monitor := tree.MonitorOf(p)
	for _, child := range tree.ChildrenOf(p) {
		if !child.IsWindow() {
			continue
		}
		switch child.Window.State {
		case types.StateFloating:
			child.Rect = child.Window.FloatingRect
		case types.StateFullscreen:
			if monitor != nil {
				child.Rect = monitor.Monitor.Rect
			}
		}
	}
}

// calculateVerticalStack arranges containers top-to-bottom.
func calculateVerticalStack(bounds types.Rect, ratios []float64, gap float64) []types.Rect {
	n := len(ratios)
	if n == 0 {
		return nil
	}

	available := bounds.Height - gap*float64(n-1)
	out := make([]types.Rect, n)
	y := bounds.Y
	for i, ratio := range ratios {
		height := available * ratio
		out[i] = types.Rect{X: bounds.X, Y: y, Width: bounds.Width, Height: height}
		y += height + gap
	}
	return out
}

// calculateHorizontalStack arranges containers left-to-right.
func calculateHorizontalStack(bounds types.Rect, ratios []float64, gap float64) []types.Rect {
	n := len(ratios)
	if n == 0 {
		return nil
	}

	available := bounds.Width - gap*float64(n-1)
	out := make([]types.Rect, n)
	x := bounds.X
	for i, ratio := range ratios {
		width := available * ratio
		out[i] = types.Rect{X: x, Y: bounds.Y, Width: width, Height: bounds.Height}
		x += width + gap
	}
	return out
}
