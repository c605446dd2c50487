package window

import (
	"fmt"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/focus"
	"github.com/yourusername/tilewm/internal/layout"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
)

// MoveWindow moves a tiling window one step in direction.
//
// Inside a parent laid out along the direction's axis, w swaps with the
// neighbouring window or enters the neighbouring split. At the edge of its
// parent, w moves up next to the nearest ancestor on that axis. When no
// ancestor uses the axis, the workspace changes axis and its other children
// are wrapped in a split. At the workspace edge, w moves to the workspace
// shown on the adjacent monitor, if any.
func MoveWindow(st *state.WmState, w *container.Container, dir types.Direction) error {
	if !w.IsWindow() {
		return fmt.Errorf("%w: %s", state.ErrNotAWindow, w)
	}
	if !w.IsTilingWindow() {
		return fmt.Errorf("%w: %s", ErrNotTiling, w)
	}

	tree := st.Tree
	parent, ok := tree.ParentOf(w)
	if !ok {
		return fmt.Errorf("move %s: %w", w, container.ErrNotFound)
	}
	axis := dir.TilingDirection()

	if d, _ := parent.TilingDirection(); d == axis {
		siblings := layout.TilingChildren(tree, parent)
		i := indexOf(siblings, w)
		j := i - 1
		if dir.Forward() {
			j = i + 1
		}
		if j >= 0 && j < len(siblings) {
			neighbour := siblings[j]
			if neighbour.Kind == container.KindSplit {
				index := -1
				if dir.Forward() {
					index = 0
				}
				return moveAcross(st, w, neighbour, index)
			}
			return swap(st, w, parent, neighbour, dir.Forward())
		}
	}

	if ancestor, child := ancestorOnAxis(tree, parent, axis); ancestor != nil {
		index := tree.Index(child)
		if dir.Forward() {
			index++
		}
		return moveAcross(st, w, ancestor, index)
	}

	ws := tree.WorkspaceOf(w)
	if d, _ := ws.TilingDirection(); d != axis {
		return changeWorkspaceAxis(st, ws, w, axis, dir.Forward())
	}

	next := focus.AdjacentMonitor(tree, tree.MonitorOf(w), dir)
	if next == nil {
		return nil
	}
	target := st.DisplayedWorkspace(next)
	if target == nil {
		return nil
	}
	return MoveWindowToWorkspace(st, w, target)
}

// swap moves w to the other side of its tiling neighbour in the same parent
func swap(st *state.WmState, w, parent, neighbour *container.Container, forward bool) error {
	index := st.Tree.Index(neighbour)
	if forward {
		index++
	}
	if err := st.Tree.MoveWithinTree(w, parent, index); err != nil {
		return err
	}
	st.PendingSync.MarkForRedraw(parent)
	st.Emit(events.ContainerMoved{ContainerID: w.ID, ParentID: parent.ID, Index: st.Tree.Index(w)})
	return nil
}

// moveAcross moves w under target at index, settles size ratios on both
// sides and collapses what it leaves behind.
func moveAcross(st *state.WmState, w, target *container.Container, index int) error {
	tree := st.Tree
	from, _ := tree.ParentOf(w)
	share := w.SizeRatio

	if err := tree.MoveWithinTree(w, target, index); err != nil {
		return err
	}
	layout.ReleaseShare(tree, from, share)
	layout.ClaimShare(tree, w)

	survivor, err := layout.Flatten(st, from)
	if err != nil {
		return err
	}
	if survivor != nil {
		st.PendingSync.MarkForRedraw(survivor)
	}

	// Flattening can replace target's children but never target itself.
	parent, _ := tree.ParentOf(w)
	st.PendingSync.MarkForRedraw(parent)
	st.Emit(events.ContainerMoved{ContainerID: w.ID, ParentID: parent.ID, Index: tree.Index(w)})
	return nil
}

// ancestorOnAxis finds the nearest ancestor above p, within p's workspace,
// laid out along axis. It also returns the ancestor's child that leads down
// to p.
func ancestorOnAxis(tree *container.Tree, p *container.Container, axis types.TilingDirection) (*container.Container, *container.Container) {
	node := p
	for node.Kind != container.KindWorkspace {
		parent, ok := tree.ParentOf(node)
		if !ok {
			return nil, nil
		}
		if d, ok := parent.TilingDirection(); ok && d == axis {
			return parent, node
		}
		node = parent
	}
	return nil, nil
}

// changeWorkspaceAxis switches ws to axis. Its current children keep their
// arrangement inside a new split on the old axis, and w goes before or
// after that split.
func changeWorkspaceAxis(st *state.WmState, ws, w *container.Container, axis types.TilingDirection, forward bool) error {
	tree := st.Tree
	if len(layout.TilingChildren(tree, ws)) == 1 && layout.TilingChildren(tree, ws)[0] == w {
		return nil
	}

	from, _ := tree.ParentOf(w)
	share := w.SizeRatio
	if err := tree.Detach(w); err != nil {
		return err
	}
	layout.ReleaseShare(tree, from, share)
	if _, err := layout.Flatten(st, from); err != nil {
		return err
	}

	oldAxis, _ := ws.TilingDirection()
	split := container.NewSplit(oldAxis)
	rest := tree.ChildrenOf(ws)
	if err := tree.Attach(split, ws, -1); err != nil {
		return err
	}
	for _, c := range rest {
		if err := tree.MoveWithinTree(c, split, -1); err != nil {
			return err
		}
	}
	split.SizeRatio = 1
	if _, err := layout.Flatten(st, split); err != nil {
		return err
	}

	ws.SetTilingDirection(axis)
	st.Emit(events.TilingDirectionChanged{ContainerID: ws.ID, Direction: axis})

	index := 0
	if forward {
		index = -1
	}
	if err := tree.Attach(w, ws, index); err != nil {
		return err
	}
	w.SizeRatio = 1
	layout.ClaimShare(tree, w)

	st.PendingSync.MarkForRedraw(ws)
	st.Emit(events.ContainerMoved{ContainerID: w.ID, ParentID: ws.ID, Index: tree.Index(w)})
	return nil
}

// MoveWindowToWorkspace moves w to the end of target. Focus stays on the
// source workspace when w held it.
func MoveWindowToWorkspace(st *state.WmState, w, target *container.Container) error {
	if !w.IsWindow() {
		return fmt.Errorf("%w: %s", state.ErrNotAWindow, w)
	}
	if target.Kind != container.KindWorkspace {
		return fmt.Errorf("move to %s: not a workspace", target)
	}

	tree := st.Tree
	source := tree.WorkspaceOf(w)
	if source == nil {
		return fmt.Errorf("move %s: %w", w, container.ErrNotFound)
	}
	if source == target {
		return nil
	}

	focused, _ := st.Focused()
	wasFocused := focused == w
	from, _ := tree.ParentOf(w)
	share := w.SizeRatio
	tiling := w.IsTilingWindow()

	if err := tree.MoveWithinTree(w, target, -1); err != nil {
		return err
	}
	if tiling {
		layout.ReleaseShare(tree, from, share)
		layout.ClaimShare(tree, w)
	}

	survivor, err := layout.Flatten(st, from)
	if err != nil {
		return err
	}
	if survivor != nil {
		st.PendingSync.MarkForRedraw(survivor)
	}
	st.PendingSync.MarkForRedraw(w)
	st.PendingSync.MarkForRedraw(target)
	st.Emit(events.ContainerMoved{ContainerID: w.ID, ParentID: target.ID, Index: tree.Index(w)})

	if wasFocused {
		next := tree.LastFocusedWindow(source)
		if next == nil {
			next = source
		}
		if err := focus.SetFocus(st, next); err != nil {
			return err
		}
	}

	logging.Debug().
		Str("windowId", w.ID.String()).
		Str("from", source.Workspace.Name).
		Str("to", target.Workspace.Name).
		Msg("window moved to workspace")
	return nil
}

func indexOf(list []*container.Container, c *container.Container) int {
	for i, x := range list {
		if x == c {
			return i
		}
	}
	return -1
}
