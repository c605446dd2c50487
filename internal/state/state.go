// Package state holds WmState, the single mutable model of the window
// manager. Only the writer goroutine in package wm touches it.
package state

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
)

var (
	ErrNoFocus        = errors.New("nothing is focused")
	ErrNotAWindow     = errors.New("container is not a window")
	ErrUnknownID      = errors.New("no container with that id")
	ErrNoWorkspace    = errors.New("no workspace available")
	ErrUnknownMonitor = errors.New("unknown monitor")
)

// WmState is the tree, the pending sync ledger, the focus pointer and the
// events staged by the command currently running.
type WmState struct {
	Tree        *container.Tree
	PendingSync *PendingSync

	focusedID uuid.UUID
	staged    []events.WmEvent
}

// NewWmState creates an empty state holding only a root container
func NewWmState() *WmState {
	return &WmState{
		Tree:        container.NewTree(),
		PendingSync: NewPendingSync(),
	}
}

// Emit stages an event. Staged events are published only if the command
// that staged them succeeds.
func (s *WmState) Emit(e events.WmEvent) {
	s.staged = append(s.staged, e)
}

// TakeEvents returns and clears the staged events
func (s *WmState) TakeEvents() []events.WmEvent {
	out := s.staged
	s.staged = nil
	return out
}

// Staged returns how many events are staged
func (s *WmState) Staged() int {
	return len(s.staged)
}

// Focused returns the focused container, if it is still in the tree
func (s *WmState) Focused() (*container.Container, bool) {
	if s.focusedID == uuid.Nil {
		return nil, false
	}
	return s.Tree.Get(s.focusedID)
}

// FocusedID returns the focused container's ID, or uuid.Nil
func (s *WmState) FocusedID() uuid.UUID {
	if _, ok := s.Focused(); !ok {
		return uuid.Nil
	}
	return s.focusedID
}

// SetFocused points focus at c and updates focus order up to the root.
// It stages a focus_changed event when focus actually moves.
func (s *WmState) SetFocused(c *container.Container) {
	prev, hadPrev := s.Focused()
	s.Tree.SetFocusedDescendant(c, nil)
	if hadPrev && prev == c {
		return
	}
	s.focusedID = c.ID

	ev := events.FocusChanged{ContainerID: c.ID}
	if hadPrev {
		id := prev.ID
		ev.Previous = &id
	}
	s.Emit(ev)
}

// ClearFocus drops the focus pointer without staging an event
func (s *WmState) ClearFocus() {
	s.focusedID = uuid.Nil
}

// Container resolves an ID, or the focused container when id is nil
func (s *WmState) Container(id *uuid.UUID) (*container.Container, error) {
	if id == nil {
		c, ok := s.Focused()
		if !ok {
			return nil, ErrNoFocus
		}
		return c, nil
	}
	c, ok := s.Tree.Get(*id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	return c, nil
}

// Window resolves a window ID, or the focused window when id is nil
func (s *WmState) Window(id *uuid.UUID) (*container.Container, error) {
	c, err := s.Container(id)
	if err != nil {
		return nil, err
	}
	if !c.IsWindow() {
		return nil, fmt.Errorf("%w: %s", ErrNotAWindow, c)
	}
	return c, nil
}

// FocusedWorkspace returns the workspace holding focus, falling back to
// the first displayed workspace.
func (s *WmState) FocusedWorkspace() (*container.Container, error) {
	if c, ok := s.Focused(); ok {
		if ws := s.Tree.WorkspaceOf(c); ws != nil {
			return ws, nil
		}
	}
	for _, ws := range s.Tree.Workspaces() {
		if ws.Workspace.Displayed {
			return ws, nil
		}
	}
	if all := s.Tree.Workspaces(); len(all) > 0 {
		return all[0], nil
	}
	return nil, ErrNoWorkspace
}

// DisplayedWorkspace returns the workspace a monitor is showing
func (s *WmState) DisplayedWorkspace(monitor *container.Container) *container.Container {
	for _, ws := range s.Tree.ChildrenOf(monitor) {
		if ws.Workspace.Displayed {
			return ws
		}
	}
	return nil
}

// Checkpoint is a copy of WmState taken before a command runs
type Checkpoint struct {
	tree      *container.Tree
	focusedID uuid.UUID
	ledger    int
	staged    int
}

// Checkpoint copies the tree and records the ledger and event marks
func (s *WmState) Checkpoint() *Checkpoint {
	return &Checkpoint{
		tree:      s.Tree.Clone(),
		focusedID: s.focusedID,
		ledger:    s.PendingSync.Len(),
		staged:    len(s.staged),
	}
}

// Rollback restores the state cp was taken from. Redraw entries and events
// recorded since cp are dropped; earlier redraw entries are rebound to the
// restored containers.
func (s *WmState) Rollback(cp *Checkpoint) {
	s.Tree = cp.tree
	s.focusedID = cp.focusedID
	s.PendingSync.Truncate(cp.ledger)
	s.PendingSync.rebind(s.Tree)
	if cp.staged < len(s.staged) {
		s.staged = s.staged[:cp.staged]
	}
}
