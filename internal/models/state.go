package models

import (
	"fmt"
	"time"

	"github.com/yourusername/tilewm/internal/types"
)

// Container types on the wire
const (
	ContainerMonitor   = "monitor"
	ContainerWorkspace = "workspace"
	ContainerSplit     = "split"
	ContainerWindow    = "window"
)

// Container is the wire form of a tree node. Fields that do not apply to
// Type are left empty.
type Container struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	ParentID  string       `json:"parentId,omitempty"`
	SizeRatio float64      `json:"sizeRatio"`
	Rect      types.Rect   `json:"rect"`
	HasFocus  bool         `json:"hasFocus,omitempty"`
	Children  []*Container `json:"children,omitempty"`

	// Monitor and workspace
	Name string `json:"name,omitempty"`

	// Monitor
	Primary bool `json:"primary,omitempty"`

	// Workspace and split
	TilingDirection string `json:"tilingDirection,omitempty"`

	// Workspace
	Displayed bool `json:"displayed,omitempty"`

	// Window
	Handle       uint64      `json:"handle,omitempty"`
	State        string      `json:"state,omitempty"`
	PrevState    string      `json:"prevState,omitempty"`
	Title        string      `json:"title,omitempty"`
	ProcessName  string      `json:"processName,omitempty"`
	ClassName    string      `json:"className,omitempty"`
	FloatingRect *types.Rect `json:"floatingRect,omitempty"`
}

// MonitorsResult is the result of a monitors query
type MonitorsResult struct {
	Monitors  []*Container `json:"monitors"`
	FocusedID string       `json:"focusedId,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// WindowsResult is the result of a windows query
type WindowsResult struct {
	Windows   []*Container `json:"windows"`
	FocusedID string       `json:"focusedId,omitempty"`
}

// SubscribeParams are the params of a subscribe request. An empty Events
// list subscribes to every kind.
type SubscribeParams struct {
	Events []string `json:"events,omitempty"`
}

// Walk visits c and its descendants in pre-order until fn returns false
func (c *Container) Walk(fn func(*Container) bool) bool {
	if !fn(c) {
		return false
	}
	for _, child := range c.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// Windows returns the windows below c in pre-order
func (c *Container) Windows() []*Container {
	var out []*Container
	c.Walk(func(n *Container) bool {
		if n.Type == ContainerWindow {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Label returns a short human-readable name
func (c *Container) Label() string {
	switch c.Type {
	case ContainerMonitor, ContainerWorkspace:
		return c.Name
	case ContainerSplit:
		return c.TilingDirection
	case ContainerWindow:
		if c.Title != "" {
			return c.Title
		}
		if c.ProcessName != "" {
			return c.ProcessName
		}
		return fmt.Sprintf("0x%x", c.Handle)
	}
	return c.Type
}

// FormatRect returns a formatted string representation of a rect
func FormatRect(r types.Rect) string {
	return fmt.Sprintf("%.0fx%.0f @ (%.0f, %.0f)", r.Width, r.Height, r.X, r.Y)
}

// ShortID returns the first segment of a container ID
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
