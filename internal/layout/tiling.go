package layout

import (
	"errors"
	"fmt"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
)

// ErrNoDirection is returned for containers that neither have a tiling
// direction nor sit inside one.
var ErrNoDirection = errors.New("container has no tiling direction")

// SetTilingDirection changes the axis that c and its siblings are laid out
// along. Workspaces and splits change in place. A tiling window that shares
// its parent with other containers is wrapped in a new split so only its
// own slot changes axis.
func SetTilingDirection(st *state.WmState, c *container.Container, dir types.TilingDirection) error {
	if !dir.Valid() {
		return fmt.Errorf("invalid tiling direction %q", dir)
	}

	target, err := directionContainer(st.Tree, c)
	if err != nil {
		return err
	}

	if c.IsWindow() && len(st.Tree.ChildrenOf(target)) > 1 {
		if cur, _ := target.TilingDirection(); cur == dir {
			return nil
		}
		return wrapInSplit(st, c, dir)
	}

	if cur, _ := target.TilingDirection(); cur == dir {
		return nil
	}
	target.SetTilingDirection(dir)
	st.PendingSync.MarkForRedraw(target)
	st.Emit(events.TilingDirectionChanged{ContainerID: target.ID, Direction: dir})
	return nil
}

// ToggleTilingDirection flips the axis of the container SetTilingDirection
// would change.
func ToggleTilingDirection(st *state.WmState, c *container.Container) error {
	target, err := directionContainer(st.Tree, c)
	if err != nil {
		return err
	}
	cur, _ := target.TilingDirection()
	return SetTilingDirection(st, c, cur.Inverse())
}

// directionContainer returns c itself for workspaces and splits, and the
// parent for tiling windows.
func directionContainer(tree *container.Tree, c *container.Container) (*container.Container, error) {
	if _, ok := c.TilingDirection(); ok {
		return c, nil
	}
	if !c.IsTilingWindow() {
		return nil, fmt.Errorf("%s: %w", c, ErrNoDirection)
	}
	p, ok := tree.ParentOf(c)
	if !ok {
		return nil, fmt.Errorf("%s: %w", c, container.ErrNotFound)
	}
	if _, ok := p.TilingDirection(); !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNoDirection)
	}
	return p, nil
}

// wrapInSplit puts w into a new split with the given direction, in w's
// current slot.
func wrapInSplit(st *state.WmState, w *container.Container, dir types.TilingDirection) error {
	split := container.NewSplit(dir)
	if err := st.Tree.ReplaceInPlace(w, split); err != nil {
		return err
	}
	w.SizeRatio = 1
	if err := st.Tree.Attach(w, split, 0); err != nil {
		return err
	}

	st.PendingSync.MarkForRedraw(split)
	st.Emit(events.TilingDirectionChanged{ContainerID: split.ID, Direction: dir})
	return nil
}

// Flatten removes splits left empty or with a single child, starting at p
// and walking up. A single child takes its split's slot and size. It
// returns the container that now occupies the position p had, or the first
// ancestor that survived.
func Flatten(st *state.WmState, p *container.Container) (*container.Container, error) {
	for p != nil && p.Kind == container.KindSplit {
		children := st.Tree.ChildrenOf(p)
		switch len(children) {
		case 0:
			parent, _ := st.Tree.ParentOf(p)
			if err := st.Tree.Detach(p); err != nil {
				return nil, err
			}
			ReleaseShare(st.Tree, parent, p.SizeRatio)
			p = parent
			continue
		case 1:
			child := children[0]
			if err := st.Tree.Detach(child); err != nil {
				return nil, err
			}
			if err := st.Tree.ReplaceInPlace(p, child); err != nil {
				return nil, err
			}
			parent, _ := st.Tree.ParentOf(child)
			if child.IsWindow() && !child.IsTilingWindow() {
				ReleaseShare(st.Tree, parent, child.SizeRatio)
				child.SizeRatio = 1
			}
			if parent != nil {
				st.PendingSync.MarkForRedraw(parent)
			}
			return child, nil
		default:
			return p, nil
		}
	}
	return p, nil
}
