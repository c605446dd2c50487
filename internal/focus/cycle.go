package focus

import (
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
)

// CycleWindowIndex calculates the next index when cycling through windows.
// Wraps around at boundaries.
func CycleWindowIndex(current, total int, forward bool) int {
	if total <= 0 {
		return 0
	}

	if forward {
		return (current + 1) % total
	}

	// Backward - handle wrap-around
	return (current - 1 + total) % total
}

// CycleFocus moves focus to the next or previous visible window of the
// focused workspace, in tree order. Returns the newly focused window.
func CycleFocus(st *state.WmState, forward bool) (*container.Container, error) {
	ws, err := st.FocusedWorkspace()
	if err != nil {
		return nil, err
	}

	var windows []*container.Container
	for _, c := range st.Tree.Descendants(ws) {
		if c.IsWindow() && c.Window.State != types.StateMinimized {
			windows = append(windows, c)
		}
	}
	if len(windows) == 0 {
		return nil, ErrNoTarget
	}

	idx := -1
	if focused, ok := st.Focused(); ok {
		for i, w := range windows {
			if w == focused {
				idx = i
			}
		}
	}

	next := windows[0]
	if idx >= 0 {
		next = windows[CycleWindowIndex(idx, len(windows), forward)]
	}
	return next, SetFocus(st, next)
}
