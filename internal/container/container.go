// Package container holds the window manager's ownership tree.
//
// Containers own their children. Parent lookup goes through the Tree's
// id-keyed index, so a Container never points back at its parent.
package container

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/tilewm/internal/types"
)

// Kind is the closed set of container variants
type Kind int

const (
	KindRoot Kind = iota
	KindMonitor
	KindWorkspace
	KindSplit
	KindWindow
)

// String returns the wire name of a Kind
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindMonitor:
		return "monitor"
	case KindWorkspace:
		return "workspace"
	case KindSplit:
		return "split"
	case KindWindow:
		return "window"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MonitorData is the payload of a Monitor container
type MonitorData struct {
	Name    string
	Rect    types.Rect
	Primary bool
}

// WorkspaceData is the payload of a Workspace container
type WorkspaceData struct {
	Name            string
	TilingDirection types.TilingDirection
	Displayed       bool
}

// SplitData is the payload of a Split container
type SplitData struct {
	TilingDirection types.TilingDirection
}

// WindowData is the payload of a Window container
type WindowData struct {
	State       types.WindowState
	prevState   *types.WindowState
	Handle      uint64
	Title       string
	ProcessName string
	ClassName   string

	// FloatingRect is where the window sits when it is not tiled.
	FloatingRect types.Rect
}

// PrevState returns the single remembered state, if any
func (w *WindowData) PrevState() (types.WindowState, bool) {
	if w.prevState == nil {
		return "", false
	}
	return *w.prevState, true
}

// SetPrevState remembers s as the state to toggle back to
func (w *WindowData) SetPrevState(s types.WindowState) {
	w.prevState = &s
}

// ClearPrevState forgets the remembered state
func (w *WindowData) ClearPrevState() {
	w.prevState = nil
}

// Container is a node in the tree. Exactly one payload pointer matching
// Kind is set; Root has none.
type Container struct {
	ID   uuid.UUID
	Kind Kind

	// SizeRatio is the share of the parent's tiling axis, in (0, 1].
	SizeRatio float64
	// Rect is written back by the layout driver.
	Rect types.Rect

	Monitor   *MonitorData
	Workspace *WorkspaceData
	Split     *SplitData
	Window    *WindowData

	children   []*Container
	focusOrder []*Container
}

func newContainer(kind Kind) *Container {
	return &Container{
		ID:        uuid.New(),
		Kind:      kind,
		SizeRatio: 1,
	}
}

// NewMonitor creates a detached Monitor container
func NewMonitor(name string, rect types.Rect, primary bool) *Container {
	c := newContainer(KindMonitor)
	c.Monitor = &MonitorData{Name: name, Rect: rect, Primary: primary}
	c.Rect = rect
	return c
}

// NewWorkspace creates a detached Workspace container
func NewWorkspace(name string, dir types.TilingDirection) *Container {
	c := newContainer(KindWorkspace)
	c.Workspace = &WorkspaceData{Name: name, TilingDirection: dir}
	return c
}

// NewSplit creates a detached Split container
func NewSplit(dir types.TilingDirection) *Container {
	c := newContainer(KindSplit)
	c.Split = &SplitData{TilingDirection: dir}
	return c
}

// NewWindow creates a detached Window container
func NewWindow(data WindowData) *Container {
	c := newContainer(KindWindow)
	if data.State == "" {
		data.State = types.StateTiling
	}
	c.Window = &data
	return c
}

// IsWindow reports whether c is a Window container
func (c *Container) IsWindow() bool {
	return c != nil && c.Kind == KindWindow
}

// IsTilingWindow reports whether c is a window taking part in tiling
func (c *Container) IsTilingWindow() bool {
	return c.IsWindow() && c.Window.State.IsTiling()
}

// TilingDirection returns the layout axis of a Workspace or Split
func (c *Container) TilingDirection() (types.TilingDirection, bool) {
	switch c.Kind {
	case KindWorkspace:
		return c.Workspace.TilingDirection, true
	case KindSplit:
		return c.Split.TilingDirection, true
	default:
		return "", false
	}
}

// SetTilingDirection changes the layout axis of a Workspace or Split
func (c *Container) SetTilingDirection(dir types.TilingDirection) bool {
	switch c.Kind {
	case KindWorkspace:
		c.Workspace.TilingDirection = dir
	case KindSplit:
		c.Split.TilingDirection = dir
	default:
		return false
	}
	return true
}

// HasChildren reports whether c owns any children
func (c *Container) HasChildren() bool {
	return len(c.children) > 0
}

// Name returns a display label for the container
func (c *Container) Name() string {
	switch c.Kind {
	case KindMonitor:
		return c.Monitor.Name
	case KindWorkspace:
		return c.Workspace.Name
	case KindWindow:
		return c.Window.Title
	default:
		return c.Kind.String()
	}
}

func (c *Container) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.ID)
}

// canOwn reports whether a parent of kind p may own a child of kind k
func canOwn(p, k Kind) bool {
	switch p {
	case KindRoot:
		return k == KindMonitor
	case KindMonitor:
		return k == KindWorkspace
	case KindWorkspace, KindSplit:
		return k == KindSplit || k == KindWindow
	default:
		return false
	}
}
