// Package focus moves the focus pointer: to a container, in a direction,
// or to a workspace.
package focus

import (
	"errors"
	"fmt"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/layout"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
)

// ErrNoTarget is returned when there is nothing to focus in the requested
// direction.
var ErrNoTarget = errors.New("no focus target")

// SetFocus focuses c, showing its workspace first if it is hidden.
// Root and monitors cannot hold focus; a monitor focuses its displayed
// workspace instead.
func SetFocus(st *state.WmState, c *container.Container) error {
	if !st.Tree.Contains(c) {
		return fmt.Errorf("focus %s: %w", c, container.ErrNotFound)
	}

	switch c.Kind {
	case container.KindRoot:
		return fmt.Errorf("focus %s: %w", c, ErrNoTarget)
	case container.KindMonitor:
		ws := st.DisplayedWorkspace(c)
		if ws == nil {
			return fmt.Errorf("monitor %s has no workspace: %w", c.Monitor.Name, ErrNoTarget)
		}
		return FocusWorkspace(st, ws)
	}

	ws := st.Tree.WorkspaceOf(c)
	if ws == nil {
		ws = c
	}
	activate(st, ws)

	if prev, ok := st.Focused(); ok && prev == c {
		return nil
	}
	st.SetFocused(c)
	st.PendingSync.MarkForRedraw(c)

	logging.Debug().Str("container", c.ID.String()).Str("kind", c.Kind.String()).Msg("focus set")
	return nil
}

// FocusWorkspace displays ws on its monitor and focuses its most recently
// focused window, or the workspace itself when it is empty.
func FocusWorkspace(st *state.WmState, ws *container.Container) error {
	if ws.Kind != container.KindWorkspace {
		return fmt.Errorf("%s is not a workspace", ws)
	}
	if !st.Tree.Contains(ws) {
		return fmt.Errorf("focus %s: %w", ws, container.ErrNotFound)
	}

	target := st.Tree.LastFocusedWindow(ws)
	if target == nil {
		target = ws
	}
	return SetFocus(st, target)
}

// activate makes ws the displayed workspace of its monitor, hiding the one
// shown before.
func activate(st *state.WmState, ws *container.Container) {
	if ws.Kind != container.KindWorkspace || ws.Workspace.Displayed {
		return
	}

	monitor := st.Tree.MonitorOf(ws)
	if monitor == nil {
		return
	}

	if old := st.DisplayedWorkspace(monitor); old != nil {
		old.Workspace.Displayed = false
		st.PendingSync.MarkForRedraw(old)
		st.Emit(events.WorkspaceDeactivated{WorkspaceID: old.ID, Name: old.Workspace.Name})
	}

	ws.Workspace.Displayed = true
	st.PendingSync.MarkForRedraw(ws)
	st.Emit(events.WorkspaceActivated{WorkspaceID: ws.ID, Name: ws.Workspace.Name, MonitorID: monitor.ID})
}

// FocusInDirection moves focus from the focused container to its neighbour
// in direction. Tiling containers navigate the tree: the nearest ancestor
// laid out along the direction's axis supplies the neighbour. Floating and
// fullscreen windows navigate by screen position. When nothing lies in the
// direction inside the workspace, focus crosses to the adjacent monitor.
func FocusInDirection(st *state.WmState, dir types.Direction) error {
	focused, ok := st.Focused()
	if !ok {
		return state.ErrNoFocus
	}

	var target *container.Container
	if focused.IsWindow() && !focused.IsTilingWindow() {
		target = floatingNeighbour(st, focused, dir)
	} else {
		target = tilingNeighbour(st.Tree, focused, dir)
	}

	if target == nil {
		monitor := st.Tree.MonitorOf(focused)
		if monitor == nil && focused.Kind == container.KindMonitor {
			monitor = focused
		}
		next := AdjacentMonitor(st.Tree, monitor, dir)
		if next == nil {
			return ErrNoTarget
		}
		return SetFocus(st, next)
	}

	return SetFocus(st, target)
}

// tilingNeighbour walks up from c to the first ancestor whose axis matches
// dir and that has a sibling on that side, then descends into that sibling.
func tilingNeighbour(tree *container.Tree, c *container.Container, dir types.Direction) *container.Container {
	axis := dir.TilingDirection()
	node := c
	for {
		p, ok := tree.ParentOf(node)
		if !ok || p.Kind == container.KindMonitor {
			return nil
		}

		if d, ok := p.TilingDirection(); ok && d == axis {
			siblings := layout.TilingChildren(tree, p)
			i := indexIn(siblings, node)
			if i >= 0 {
				j := i - 1
				if dir.Forward() {
					j = i + 1
				}
				if j >= 0 && j < len(siblings) {
					return descend(tree, siblings[j])
				}
			}
		}
		node = p
	}
}

// descend returns the most recently focused window below c, or c itself
func descend(tree *container.Tree, c *container.Container) *container.Container {
	if c.IsWindow() {
		return c
	}
	for _, child := range tree.FocusOrder(c) {
		if child.IsTilingWindow() || child.Kind == container.KindSplit {
			return descend(tree, child)
		}
	}
	return c
}

// floatingNeighbour picks the nearest non-tiling, non-minimized window in
// the same workspace by screen position.
func floatingNeighbour(st *state.WmState, c *container.Container, dir types.Direction) *container.Container {
	ws := st.Tree.WorkspaceOf(c)
	if ws == nil {
		return nil
	}

	var candidates []Candidate
	for _, w := range st.Tree.Descendants(ws) {
		if w == c || !w.IsWindow() || w.IsTilingWindow() || w.Window.State == types.StateMinimized {
			continue
		}
		candidates = append(candidates, Candidate{ID: w.ID, Rect: w.Rect})
	}

	id, ok := FindTarget(c.Rect, dir, candidates, false)
	if !ok {
		return nil
	}
	target, _ := st.Tree.Get(id)
	return target
}

func indexIn(list []*container.Container, c *container.Container) int {
	for i, x := range list {
		if x == c {
			return i
		}
	}
	return -1
}
