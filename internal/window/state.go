package window

import (
	"fmt"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/layout"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
)

// UpdateWindowState moves w into target.
//
// Nothing happens when w is already in target. The policy is consulted
// before any mutation. Entering a non-tiling state remembers the old state
// in w's single previous-state slot; entering Tiling clears it. Only a
// change that crosses the tiling boundary marks w for redraw, since only
// that changes the layout of its siblings.
func UpdateWindowState(st *state.WmState, policy Policy, w *container.Container, target types.WindowState) error {
	if !w.IsWindow() {
		return fmt.Errorf("%w: %s", state.ErrNotAWindow, w)
	}
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, target)
	}

	old := w.Window.State
	if old == target {
		return nil
	}
	if err := checkPolicy(policy, st.Tree, w, target); err != nil {
		return err
	}

	crosses := old.IsTiling() != target.IsTiling()

	w.Window.State = target
	if target.IsTiling() {
		w.Window.ClearPrevState()
	} else {
		w.Window.SetPrevState(old)
	}

	if target == types.StateFloating && w.Window.FloatingRect == (types.Rect{}) {
		w.Window.FloatingRect = defaultFloatingRect(st.Tree, w)
	}

	if crosses {
		if p, ok := st.Tree.ParentOf(w); ok {
			if target.IsTiling() {
				layout.ClaimShare(st.Tree, w)
			} else {
				layout.ReleaseShare(st.Tree, p, w.SizeRatio)
			}
		}
		st.PendingSync.MarkForRedraw(w)
	}

	st.Emit(events.WindowStateChanged{WindowID: w.ID, Old: old, New: target})

	logging.Debug().
		Str("windowId", w.ID.String()).
		Str("from", string(old)).
		Str("to", string(target)).
		Bool("crossesTiling", crosses).
		Msg("window state changed")
	return nil
}

// ToggleWindowState flips w in or out of s.
//
// Outside s, w enters s. Inside s, w returns to its previous state if it
// has one, otherwise to Tiling. Toggling Tiling on a tiling window with no
// previous state changes nothing. Whichever branch runs, a successful
// toggle always marks w for redraw; a failed one leaves the ledger alone.
func ToggleWindowState(st *state.WmState, policy Policy, w *container.Container, s types.WindowState) error {
	if !w.IsWindow() {
		return fmt.Errorf("%w: %s", state.ErrNotAWindow, w)
	}

	var err error
	prev, hasPrev := w.Window.PrevState()
	switch {
	case w.Window.State != s:
		err = UpdateWindowState(st, policy, w, s)
	case hasPrev:
		err = UpdateWindowState(st, policy, w, prev)
	case s != types.StateTiling:
		err = UpdateWindowState(st, policy, w, types.StateTiling)
	}
	if err != nil {
		return err
	}

	st.PendingSync.MarkForRedraw(w)
	return nil
}

// defaultFloatingRect centres a window at half its monitor's size
func defaultFloatingRect(tree *container.Tree, w *container.Container) types.Rect {
	m := tree.MonitorOf(w)
	if m == nil {
		return w.Rect
	}
	r := m.Monitor.Rect
	return types.Rect{
		X:      r.X + r.Width/4,
		Y:      r.Y + r.Height/4,
		Width:  r.Width / 2,
		Height: r.Height / 2,
	}
}
