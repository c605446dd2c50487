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

// ManageOptions describes a native window entering the tree
type ManageOptions struct {
	Data container.WindowData
	// Workspace receives the window; nil means the focused workspace.
	Workspace *container.Container
	// Focus moves focus to the new window when its workspace is displayed.
	Focus bool
}

// ManageWindow wraps a native window in a Window container and attaches it
// next to the focused window of the target workspace, or at the end when
// focus is elsewhere. A requested initial state the policy refuses falls
// back to Tiling.
func ManageWindow(st *state.WmState, policy Policy, opts ManageOptions) (*container.Container, error) {
	if _, ok := st.Tree.WindowByHandle(opts.Data.Handle); ok {
		return nil, fmt.Errorf("%w: handle %d", ErrAlreadyManaged, opts.Data.Handle)
	}

	ws := opts.Workspace
	if ws == nil {
		var err error
		if ws, err = st.FocusedWorkspace(); err != nil {
			return nil, err
		}
	}
	if ws.Kind != container.KindWorkspace || !st.Tree.Contains(ws) {
		return nil, fmt.Errorf("manage into %s: %w", ws, container.ErrNotFound)
	}

	data := opts.Data
	initial := data.State
	if initial == "" {
		initial = types.StateTiling
	}
	if !initial.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, initial)
	}
	data.State = types.StateTiling

	w := container.NewWindow(data)
	parent, index := insertionPoint(st, ws)
	if err := st.Tree.Attach(w, parent, index); err != nil {
		return nil, err
	}

	if initial != types.StateTiling {
		if err := checkPolicy(policy, st.Tree, w, initial); err != nil {
			logging.Warn().Err(err).Uint64("handle", data.Handle).Msg("initial state refused, tiling instead")
			initial = types.StateTiling
		}
	}

	if initial.IsTiling() {
		layout.ClaimShare(st.Tree, w)
	} else {
		w.Window.State = initial
		if initial == types.StateFloating && w.Window.FloatingRect == (types.Rect{}) {
			w.Window.FloatingRect = defaultFloatingRect(st.Tree, w)
		}
	}

	st.PendingSync.MarkForRedraw(w)
	st.PendingSync.MarkForRedraw(parent)
	st.Emit(events.WindowManaged{WindowID: w.ID, Handle: data.Handle, WorkspaceID: ws.ID, State: w.Window.State})

	// An empty workspace holding focus hands it to its first window.
	focused, hasFocus := st.Focused()
	if (opts.Focus || !hasFocus || !focused.IsWindow()) && ws.Workspace.Displayed {
		if err := focus.SetFocus(st, w); err != nil {
			return nil, err
		}
	}

	logging.Info().
		Str("windowId", w.ID.String()).
		Uint64("handle", data.Handle).
		Str("workspace", ws.Workspace.Name).
		Str("state", string(w.Window.State)).
		Msg("window managed")
	return w, nil
}

// insertionPoint places new windows after the focused window when it is in
// ws, otherwise at the end of ws.
func insertionPoint(st *state.WmState, ws *container.Container) (*container.Container, int) {
	focused, ok := st.Focused()
	if !ok || !focused.IsWindow() || st.Tree.WorkspaceOf(focused) != ws {
		return ws, -1
	}
	p, ok := st.Tree.ParentOf(focused)
	if !ok {
		return ws, -1
	}
	return p, st.Tree.Index(focused) + 1
}

// UnmanageWindow removes w from the tree, hands its tiling share back to
// its siblings and collapses splits it leaves empty or with one child. If
// w held focus, focus moves to the most recently focused window left in the
// workspace, or to the workspace itself.
func UnmanageWindow(st *state.WmState, w *container.Container) error {
	if !w.IsWindow() {
		return fmt.Errorf("%w: %s", state.ErrNotAWindow, w)
	}
	parent, ok := st.Tree.ParentOf(w)
	if !ok {
		return fmt.Errorf("unmanage %s: %w", w, container.ErrNotFound)
	}

	ws := st.Tree.WorkspaceOf(w)
	focused, _ := st.Focused()
	wasFocused := focused == w
	wasTiling := w.IsTilingWindow()

	if err := st.Tree.Detach(w); err != nil {
		return err
	}
	if wasTiling {
		layout.ReleaseShare(st.Tree, parent, w.SizeRatio)
	}

	survivor, err := layout.Flatten(st, parent)
	if err != nil {
		return err
	}
	if survivor != nil {
		st.PendingSync.MarkForRedraw(survivor)
	}

	st.Emit(events.WindowUnmanaged{WindowID: w.ID, Handle: w.Window.Handle})

	if wasFocused {
		st.ClearFocus()
		next := st.Tree.LastFocusedWindow(ws)
		if next == nil {
			next = ws
		}
		if err := focus.SetFocus(st, next); err != nil {
			return err
		}
	}

	logging.Info().
		Str("windowId", w.ID.String()).
		Uint64("handle", w.Window.Handle).
		Msg("window unmanaged")
	return nil
}
