package server

import (
	"time"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/models"
	"github.com/yourusername/tilewm/internal/state"
)

// Monitors copies the tree below every monitor into wire DTOs. It must run
// on the writer goroutine.
func Monitors(st *state.WmState) *models.MonitorsResult {
	focused := st.FocusedID()
	out := &models.MonitorsResult{Timestamp: time.Now()}
	for _, mon := range st.Tree.Monitors() {
		out.Monitors = append(out.Monitors, toDTO(st.Tree, mon, focused.String(), true))
	}
	if f, ok := st.Focused(); ok {
		out.FocusedID = f.ID.String()
	}
	return out
}

// Windows lists every window in pre-order, without children
func Windows(st *state.WmState) *models.WindowsResult {
	focused := st.FocusedID().String()
	out := &models.WindowsResult{Windows: []*models.Container{}}
	for _, w := range st.Tree.Windows() {
		out.Windows = append(out.Windows, toDTO(st.Tree, w, focused, false))
	}
	if _, ok := st.Focused(); ok {
		out.FocusedID = focused
	}
	return out
}

func toDTO(tree *container.Tree, c *container.Container, focusedID string, deep bool) *models.Container {
	dto := &models.Container{
		ID:        c.ID.String(),
		Type:      c.Kind.String(),
		SizeRatio: c.SizeRatio,
		Rect:      c.Rect,
		HasFocus:  c.ID.String() == focusedID,
	}
	if p, ok := tree.ParentOf(c); ok && p.Kind != container.KindRoot {
		dto.ParentID = p.ID.String()
	}

	switch c.Kind {
	case container.KindMonitor:
		dto.Name = c.Monitor.Name
		dto.Primary = c.Monitor.Primary
		dto.Rect = c.Monitor.Rect
	case container.KindWorkspace:
		dto.Name = c.Workspace.Name
		dto.TilingDirection = string(c.Workspace.TilingDirection)
		dto.Displayed = c.Workspace.Displayed
	case container.KindSplit:
		dto.TilingDirection = string(c.Split.TilingDirection)
	case container.KindWindow:
		w := c.Window
		dto.Handle = w.Handle
		dto.State = string(w.State)
		if prev, ok := w.PrevState(); ok {
			dto.PrevState = string(prev)
		}
		dto.Title = w.Title
		dto.ProcessName = w.ProcessName
		dto.ClassName = w.ClassName
		if !w.State.IsTiling() {
			r := w.FloatingRect
			dto.FloatingRect = &r
		}
	}

	if deep {
		for _, child := range tree.ChildrenOf(c) {
			dto.Children = append(dto.Children, toDTO(tree, child, focusedID, true))
		}
	}
	return dto
}
