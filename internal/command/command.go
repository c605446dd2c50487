// Package command defines InvokeCommand, the closed set of mutations clients
// and providers can ask the window manager to perform, and executes them
// against WmState.
package command

import (
	"github.com/google/uuid"

	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/types"
)

// Name is the wire discriminator of a command
type Name string

const (
	NameSetWindowState        Name = "set_window_state"
	NameToggleWindowState     Name = "toggle_window_state"
	NameFocus                 Name = "focus"
	NameFocusDirection        Name = "focus_direction"
	NameFocusWorkspace        Name = "focus_workspace"
	NameCycleFocus            Name = "cycle_focus"
	NameMoveWindow            Name = "move_window"
	NameMoveWindowToWorkspace Name = "move_window_to_workspace"
	NameSetTilingDirection    Name = "set_tiling_direction"
	NameToggleTilingDirection Name = "toggle_tiling_direction"
	NameResizeWindow          Name = "resize_window"
	NameManageWindow          Name = "manage_window"
	NameUnmanageWindow        Name = "unmanage_window"
	NameAddMonitor            Name = "add_monitor"
	NameRemoveMonitor         Name = "remove_monitor"
	NameReloadConfig          Name = "reload_config"
)

// Command is one InvokeCommand variant. The set of implementations is
// closed to this package.
type Command interface {
	Name() Name
	isCommand()
}

// SetWindowState moves a window into State. A nil WindowID means the
// focused window.
type SetWindowState struct {
	WindowID *uuid.UUID        `json:"windowId,omitempty"`
	State    types.WindowState `json:"state" validate:"required,windowstate"`
}

// ToggleWindowState toggles a window between State and the state it had
// before entering State.
type ToggleWindowState struct {
	WindowID *uuid.UUID        `json:"windowId,omitempty"`
	State    types.WindowState `json:"state" validate:"required,windowstate"`
}

type Focus struct {
	ContainerID uuid.UUID `json:"containerId" validate:"required"`
}

type FocusDirection struct {
	Direction string `json:"direction" validate:"required,direction"`
}

// FocusWorkspace displays and focuses a workspace, creating it when no
// workspace has that name.
type FocusWorkspace struct {
	Workspace string `json:"workspace" validate:"required"`
}

// CycleFocus focuses the next window of the focused workspace, or the
// previous one when Reverse is set.
type CycleFocus struct {
	Reverse bool `json:"reverse,omitempty"`
}

type MoveWindow struct {
	WindowID  *uuid.UUID `json:"windowId,omitempty"`
	Direction string     `json:"direction" validate:"required,direction"`
}

type MoveWindowToWorkspace struct {
	WindowID  *uuid.UUID `json:"windowId,omitempty"`
	Workspace string     `json:"workspace" validate:"required"`
}

type SetTilingDirection struct {
	ContainerID     *uuid.UUID            `json:"containerId,omitempty"`
	TilingDirection types.TilingDirection `json:"tilingDirection" validate:"required,tilingdirection"`
}

type ToggleTilingDirection struct {
	ContainerID *uuid.UUID `json:"containerId,omitempty"`
}

// ResizeWindow grows (positive Delta) or shrinks a tiling container along
// its parent's axis. Delta is a fraction of the parent.
type ResizeWindow struct {
	ContainerID *uuid.UUID `json:"containerId,omitempty"`
	Delta       float64    `json:"delta" validate:"required,gte=-0.9,lte=0.9"`
}

// ManageWindow brings a native window under management. Sent by the
// window handle provider.
type ManageWindow struct {
	Handle      uint64            `json:"handle" validate:"required"`
	Title       string            `json:"title,omitempty"`
	ProcessName string            `json:"processName,omitempty"`
	ClassName   string            `json:"className,omitempty"`
	Workspace   string            `json:"workspace,omitempty"`
	State       types.WindowState `json:"state,omitempty" validate:"omitempty,windowstate"`
	Rect        *types.Rect       `json:"rect,omitempty"`
}

type UnmanageWindow struct {
	Handle uint64 `json:"handle" validate:"required"`
}

// AddMonitor registers a display, or updates its geometry when the name is
// already known. Sent by the display provider.
type AddMonitor struct {
	MonitorName string     `json:"name" validate:"required"`
	Rect        types.Rect `json:"rect"`
	Primary     bool       `json:"primary,omitempty"`
}

type RemoveMonitor struct {
	MonitorName string `json:"name" validate:"required"`
}

// ReloadConfig swaps in a new configuration. Config is set by the file
// watcher; clients send only Path, or nothing to reread the current file.
type ReloadConfig struct {
	Path   string         `json:"path,omitempty"`
	Config *config.Config `json:"-" validate:"-"`
}

func (*SetWindowState) Name() Name        { return NameSetWindowState }
func (*ToggleWindowState) Name() Name     { return NameToggleWindowState }
func (*Focus) Name() Name                 { return NameFocus }
func (*FocusDirection) Name() Name        { return NameFocusDirection }
func (*FocusWorkspace) Name() Name        { return NameFocusWorkspace }
func (*CycleFocus) Name() Name            { return NameCycleFocus }
func (*MoveWindow) Name() Name            { return NameMoveWindow }
func (*MoveWindowToWorkspace) Name() Name { return NameMoveWindowToWorkspace }
func (*SetTilingDirection) Name() Name    { return NameSetTilingDirection }
func (*ToggleTilingDirection) Name() Name { return NameToggleTilingDirection }
func (*ResizeWindow) Name() Name          { return NameResizeWindow }
func (*ManageWindow) Name() Name          { return NameManageWindow }
func (*UnmanageWindow) Name() Name        { return NameUnmanageWindow }
func (*AddMonitor) Name() Name            { return NameAddMonitor }
func (*RemoveMonitor) Name() Name         { return NameRemoveMonitor }
func (*ReloadConfig) Name() Name          { return NameReloadConfig }

func (*SetWindowState) isCommand()        {}
func (*ToggleWindowState) isCommand()     {}
func (*Focus) isCommand()                 {}
func (*FocusDirection) isCommand()        {}
func (*FocusWorkspace) isCommand()        {}
func (*CycleFocus) isCommand()            {}
func (*MoveWindow) isCommand()            {}
func (*MoveWindowToWorkspace) isCommand() {}
func (*SetTilingDirection) isCommand()    {}
func (*ToggleTilingDirection) isCommand() {}
func (*ResizeWindow) isCommand()          {}
func (*ManageWindow) isCommand()          {}
func (*UnmanageWindow) isCommand()        {}
func (*AddMonitor) isCommand()            {}
func (*RemoveMonitor) isCommand()         {}
func (*ReloadConfig) isCommand()          {}

var registry = map[Name]func() Command{
	NameSetWindowState:        func() Command { return &SetWindowState{} },
	NameToggleWindowState:     func() Command { return &ToggleWindowState{} },
	NameFocus:                 func() Command { return &Focus{} },
	NameFocusDirection:        func() Command { return &FocusDirection{} },
	NameFocusWorkspace:        func() Command { return &FocusWorkspace{} },
	NameCycleFocus:            func() Command { return &CycleFocus{} },
	NameMoveWindow:            func() Command { return &MoveWindow{} },
	NameMoveWindowToWorkspace: func() Command { return &MoveWindowToWorkspace{} },
	NameSetTilingDirection:    func() Command { return &SetTilingDirection{} },
	NameToggleTilingDirection: func() Command { return &ToggleTilingDirection{} },
	NameResizeWindow:          func() Command { return &ResizeWindow{} },
	NameManageWindow:          func() Command { return &ManageWindow{} },
	NameUnmanageWindow:        func() Command { return &UnmanageWindow{} },
	NameAddMonitor:            func() Command { return &AddMonitor{} },
	NameRemoveMonitor:         func() Command { return &RemoveMonitor{} },
	NameReloadConfig:          func() Command { return &ReloadConfig{} },
}

// Names lists every command name in a stable order
func Names() []Name {
	return []Name{
		NameSetWindowState, NameToggleWindowState,
		NameFocus, NameFocusDirection, NameFocusWorkspace, NameCycleFocus,
		NameMoveWindow, NameMoveWindowToWorkspace,
		NameSetTilingDirection, NameToggleTilingDirection, NameResizeWindow,
		NameManageWindow, NameUnmanageWindow,
		NameAddMonitor, NameRemoveMonitor,
		NameReloadConfig,
	}
}
