// Package events defines the notifications emitted after the window
// manager applies a change, and the bus that fans them out.
package events

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/tilewm/internal/types"
)

// Kind names an event variant on the wire
type Kind string

const (
	KindWindowManaged          Kind = "window_managed"
	KindWindowUnmanaged        Kind = "window_unmanaged"
	KindWindowStateChanged     Kind = "window_state_changed"
	KindFocusChanged           Kind = "focus_changed"
	KindWorkspaceActivated     Kind = "workspace_activated"
	KindWorkspaceDeactivated   Kind = "workspace_deactivated"
	KindMonitorAdded           Kind = "monitor_added"
	KindMonitorRemoved         Kind = "monitor_removed"
	KindTilingDirectionChanged Kind = "tiling_direction_changed"
	KindContainerMoved         Kind = "container_moved"
	KindConfigReloaded         Kind = "config_reloaded"
)

// AllKinds lists every event kind
var AllKinds = []Kind{
	KindWindowManaged,
	KindWindowUnmanaged,
	KindWindowStateChanged,
	KindFocusChanged,
	KindWorkspaceActivated,
	KindWorkspaceDeactivated,
	KindMonitorAdded,
	KindMonitorRemoved,
	KindTilingDirectionChanged,
	KindContainerMoved,
	KindConfigReloaded,
}

// ParseKind validates an event kind name
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind: %q", s)
}

// WmEvent is an immutable description of an applied change.
// The set of implementations is closed to this package.
type WmEvent interface {
	Kind() Kind
	isWmEvent()
}

type WindowManaged struct {
	WindowID    uuid.UUID         `json:"windowId"`
	Handle      uint64            `json:"handle"`
	WorkspaceID uuid.UUID         `json:"workspaceId"`
	State       types.WindowState `json:"state"`
}

type WindowUnmanaged struct {
	WindowID uuid.UUID `json:"windowId"`
	Handle   uint64    `json:"handle"`
}

type WindowStateChanged struct {
	WindowID uuid.UUID         `json:"windowId"`
	Old      types.WindowState `json:"oldState"`
	New      types.WindowState `json:"newState"`
}

type FocusChanged struct {
	ContainerID uuid.UUID  `json:"containerId"`
	Previous    *uuid.UUID `json:"previousId,omitempty"`
}

type WorkspaceActivated struct {
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Name        string    `json:"name"`
	MonitorID   uuid.UUID `json:"monitorId"`
}

type WorkspaceDeactivated struct {
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Name        string    `json:"name"`
}

type MonitorAdded struct {
	MonitorID uuid.UUID `json:"monitorId"`
	Name      string    `json:"name"`
}

type MonitorRemoved struct {
	MonitorID uuid.UUID `json:"monitorId"`
	Name      string    `json:"name"`
}

type TilingDirectionChanged struct {
	ContainerID uuid.UUID             `json:"containerId"`
	Direction   types.TilingDirection `json:"tilingDirection"`
}

type ContainerMoved struct {
	ContainerID uuid.UUID `json:"containerId"`
	ParentID    uuid.UUID `json:"parentId"`
	Index       int       `json:"index"`
}

type ConfigReloaded struct {
	Path string `json:"path,omitempty"`
}

func (WindowManaged) Kind() Kind          { return KindWindowManaged }
func (WindowUnmanaged) Kind() Kind        { return KindWindowUnmanaged }
func (WindowStateChanged) Kind() Kind     { return KindWindowStateChanged }
func (FocusChanged) Kind() Kind           { return KindFocusChanged }
func (WorkspaceActivated) Kind() Kind     { return KindWorkspaceActivated }
func (WorkspaceDeactivated) Kind() Kind   { return KindWorkspaceDeactivated }
func (MonitorAdded) Kind() Kind           { return KindMonitorAdded }
func (MonitorRemoved) Kind() Kind         { return KindMonitorRemoved }
func (TilingDirectionChanged) Kind() Kind { return KindTilingDirectionChanged }
func (ContainerMoved) Kind() Kind         { return KindContainerMoved }
func (ConfigReloaded) Kind() Kind         { return KindConfigReloaded }

func (WindowManaged) isWmEvent()          {}
func (WindowUnmanaged) isWmEvent()        {}
func (WindowStateChanged) isWmEvent()     {}
func (FocusChanged) isWmEvent()           {}
func (WorkspaceActivated) isWmEvent()     {}
func (WorkspaceDeactivated) isWmEvent()   {}
func (MonitorAdded) isWmEvent()           {}
func (MonitorRemoved) isWmEvent()         {}
func (TilingDirectionChanged) isWmEvent() {}
func (ContainerMoved) isWmEvent()         {}
func (ConfigReloaded) isWmEvent()         {}

// Filter selects event kinds for a subscriber. The zero value matches
// every kind.
type Filter struct {
	kinds map[Kind]bool
}

// NewFilter builds a filter matching only the given kinds
func NewFilter(kinds ...Kind) Filter {
	if len(kinds) == 0 {
		return Filter{}
	}
	f := Filter{kinds: make(map[Kind]bool, len(kinds))}
	for _, k := range kinds {
		f.kinds[k] = true
	}
	return f
}

// ParseFilter builds a filter from wire names
func ParseFilter(names []string) (Filter, error) {
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return Filter{}, err
		}
		kinds = append(kinds, k)
	}
	return NewFilter(kinds...), nil
}

// Match reports whether the filter lets k through
func (f Filter) Match(k Kind) bool {
	return len(f.kinds) == 0 || f.kinds[k]
}
