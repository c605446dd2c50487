package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/focus"
	"github.com/yourusername/tilewm/internal/layout"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
	"github.com/yourusername/tilewm/internal/window"
)

var (
	ErrLastMonitor   = errors.New("cannot remove the last monitor")
	ErrUnknownHandle = errors.New("no managed window with that handle")
)

// Result is the success payload returned to the caller
type Result map[string]interface{}

// Env is what commands read besides WmState. It is owned by the writer
// goroutine; reload_config replaces Config.
type Env struct {
	Config *config.Config
}

// NewEnv returns an Env using cfg, or the defaults when cfg is nil
func NewEnv(cfg *config.Config) *Env {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Env{Config: cfg}
}

// Execute applies cmd to st. A failing command may leave st partly
// changed; callers restore it from a state.Checkpoint taken beforehand.
// Redraw marks and staged events are left for the caller to commit.
func Execute(st *state.WmState, env *Env, cmd Command) (Result, error) {
	cfg := env.Config

	switch c := cmd.(type) {
	case *SetWindowState:
		w, err := st.Window(c.WindowID)
		if err != nil {
			return nil, err
		}
		if err := window.UpdateWindowState(st, cfg, w, c.State); err != nil {
			return nil, err
		}
		return windowResult(w), nil

	case *ToggleWindowState:
		w, err := st.Window(c.WindowID)
		if err != nil {
			return nil, err
		}
		if err := window.ToggleWindowState(st, cfg, w, c.State); err != nil {
			return nil, err
		}
		return Result{"windowId": w.ID.String(), "state": string(w.Window.State)}, nil

	case *Focus:
		target, err := st.Container(&c.ContainerID)
		if err != nil {
			return nil, err
		}
		return nil, focus.SetFocus(st, target)

	case *FocusDirection:
		dir, _ := types.ParseDirection(c.Direction)
		return nil, focus.FocusInDirection(st, dir)

	case *FocusWorkspace:
		ws, err := ensureWorkspace(st, cfg, c.Workspace)
		if err != nil {
			return nil, err
		}
		return Result{"workspaceId": ws.ID.String()}, focus.FocusWorkspace(st, ws)

	case *CycleFocus:
		w, err := focus.CycleFocus(st, !c.Reverse)
		if err != nil {
			return nil, err
		}
		return windowResult(w), nil

	case *MoveWindow:
		w, err := st.Window(c.WindowID)
		if err != nil {
			return nil, err
		}
		dir, _ := types.ParseDirection(c.Direction)
		return nil, window.MoveWindow(st, w, dir)

	case *MoveWindowToWorkspace:
		w, err := st.Window(c.WindowID)
		if err != nil {
			return nil, err
		}
		ws, err := ensureWorkspace(st, cfg, c.Workspace)
		if err != nil {
			return nil, err
		}
		return Result{"workspaceId": ws.ID.String()}, window.MoveWindowToWorkspace(st, w, ws)

	case *SetTilingDirection:
		target, err := st.Container(c.ContainerID)
		if err != nil {
			return nil, err
		}
		return nil, layout.SetTilingDirection(st, target, c.TilingDirection)

	case *ToggleTilingDirection:
		target, err := st.Container(c.ContainerID)
		if err != nil {
			return nil, err
		}
		return nil, layout.ToggleTilingDirection(st, target)

	case *ResizeWindow:
		return nil, resize(st, c)

	case *ManageWindow:
		return manage(st, cfg, c)

	case *UnmanageWindow:
		w, ok := st.Tree.WindowByHandle(c.Handle)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, c.Handle)
		}
		return windowResult(w), window.UnmanageWindow(st, w)

	case *AddMonitor:
		return addMonitor(st, cfg, c)

	case *RemoveMonitor:
		return nil, removeMonitor(st, c)

	case *ReloadConfig:
		return nil, reloadConfig(st, env, c)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
}

func windowResult(w *container.Container) Result {
	if w == nil {
		return nil
	}
	return Result{"windowId": w.ID.String()}
}

func resize(st *state.WmState, c *ResizeWindow) error {
	target, err := st.Container(c.ContainerID)
	if err != nil {
		return err
	}
	if target.IsWindow() && !target.IsTilingWindow() {
		return fmt.Errorf("%w: %s", window.ErrNotTiling, target)
	}
	changed, err := layout.Resize(st.Tree, target, c.Delta)
	if err != nil {
		return err
	}
	for _, ch := range changed {
		st.PendingSync.MarkForRedraw(ch)
	}
	return nil
}

func manage(st *state.WmState, cfg *config.Config, c *ManageWindow) (Result, error) {
	if _, ok := st.Tree.WindowByHandle(c.Handle); ok {
		return nil, fmt.Errorf("%w: handle %d", window.ErrAlreadyManaged, c.Handle)
	}

	data := container.WindowData{
		Handle:      c.Handle,
		Title:       c.Title,
		ProcessName: c.ProcessName,
		ClassName:   c.ClassName,
		State:       c.State,
	}
	if c.Rect != nil {
		data.FloatingRect = *c.Rect
	}

	props := config.WindowProps{Process: c.ProcessName, Class: c.ClassName, Title: c.Title}
	if data.State == "" {
		data.State = cfg.InitialState(props)
	}

	opts := window.ManageOptions{Data: data, Focus: cfg.General.FocusNewWindows}
	name := c.Workspace
	if name == "" {
		name = cfg.InitialWorkspace(props)
	}
	if name != "" {
		ws, err := ensureWorkspace(st, cfg, name)
		if err != nil {
			return nil, err
		}
		opts.Workspace = ws
	}

	w, err := window.ManageWindow(st, cfg, opts)
	if err != nil {
		return nil, err
	}
	return Result{"windowId": w.ID.String(), "state": string(w.Window.State)}, nil
}

// ensureWorkspace returns the workspace called name, creating it on the
// monitor the configuration assigns it to, or on the focused monitor.
func ensureWorkspace(st *state.WmState, cfg *config.Config, name string) (*container.Container, error) {
	if ws, ok := st.Tree.WorkspaceByName(name); ok {
		return ws, nil
	}

	monitor := monitorFor(st, cfg, name)
	if monitor == nil {
		return nil, fmt.Errorf("create workspace %q: %w", name, state.ErrUnknownMonitor)
	}
	ws := container.NewWorkspace(name, cfg.General.DefaultTilingDirection)
	if err := st.Tree.Attach(ws, monitor, -1); err != nil {
		return nil, err
	}
	st.PendingSync.MarkForRedraw(ws)

	logging.Debug().Str("workspace", name).Str("monitor", monitor.Monitor.Name).Msg("workspace created")
	return ws, nil
}

func monitorFor(st *state.WmState, cfg *config.Config, name string) *container.Container {
	for _, wc := range cfg.Workspaces {
		if wc.Name != name || wc.Monitor == "" {
			continue
		}
		for _, m := range st.Tree.Monitors() {
			if m.Monitor.Name == wc.Monitor || (wc.Monitor == "primary" && m.Monitor.Primary) {
				return m
			}
		}
	}
	if ws, err := st.FocusedWorkspace(); err == nil {
		return st.Tree.MonitorOf(ws)
	}
	if monitors := st.Tree.Monitors(); len(monitors) > 0 {
		return monitors[0]
	}
	return nil
}

func addMonitor(st *state.WmState, cfg *config.Config, c *AddMonitor) (Result, error) {
	if mon, ok := st.Tree.MonitorByName(c.MonitorName); ok {
		mon.Monitor.Rect = c.Rect
		mon.Monitor.Primary = c.Primary
		mon.Rect = c.Rect
		st.PendingSync.MarkForRedraw(mon)
		return Result{"monitorId": mon.ID.String()}, nil
	}

	mon := container.NewMonitor(c.MonitorName, c.Rect, c.Primary)
	if err := st.Tree.Attach(mon, st.Tree.Root(), -1); err != nil {
		return nil, err
	}
	st.Emit(events.MonitorAdded{MonitorID: mon.ID, Name: c.MonitorName})
	if err := populateMonitor(st, cfg, mon); err != nil {
		return nil, err
	}
	st.PendingSync.MarkForRedraw(mon)

	if _, ok := st.Focused(); !ok {
		if err := focus.FocusWorkspace(st, st.DisplayedWorkspace(mon)); err != nil {
			return nil, err
		}
	}

	logging.Info().
		Str("monitor", c.MonitorName).
		Float64("width", c.Rect.Width).
		Float64("height", c.Rect.Height).
		Bool("primary", c.Primary).
		Msg("monitor added")
	return Result{"monitorId": mon.ID.String()}, nil
}

// populateMonitor creates the configured workspaces of mon that do not
// exist yet, falls back to one numbered workspace, and displays the first.
func populateMonitor(st *state.WmState, cfg *config.Config, mon *container.Container) error {
	for _, wc := range cfg.WorkspacesFor(mon.Monitor.Name, mon.Monitor.Primary) {
		if _, ok := st.Tree.WorkspaceByName(wc.Name); ok {
			continue
		}
		ws := container.NewWorkspace(wc.Name, cfg.General.DefaultTilingDirection)
		if err := st.Tree.Attach(ws, mon, -1); err != nil {
			return err
		}
	}

	children := st.Tree.ChildrenOf(mon)
	if len(children) == 0 {
		ws := container.NewWorkspace(nextWorkspaceName(st.Tree), cfg.General.DefaultTilingDirection)
		if err := st.Tree.Attach(ws, mon, -1); err != nil {
			return err
		}
		children = st.Tree.ChildrenOf(mon)
	}

	if st.DisplayedWorkspace(mon) == nil {
		ws := children[0]
		ws.Workspace.Displayed = true
		st.PendingSync.MarkForRedraw(ws)
		st.Emit(events.WorkspaceActivated{WorkspaceID: ws.ID, Name: ws.Workspace.Name, MonitorID: mon.ID})
	}
	return nil
}

// nextWorkspaceName returns the lowest positive number not used as a
// workspace name
func nextWorkspaceName(tree *container.Tree) string {
	for i := 1; ; i++ {
		name := strconv.Itoa(i)
		if _, ok := tree.WorkspaceByName(name); !ok {
			return name
		}
	}
}

// removeMonitor hands the monitor's workspaces to another monitor, keeping
// that monitor's displayed workspace, then drops the monitor.
func removeMonitor(st *state.WmState, c *RemoveMonitor) error {
	mon, ok := st.Tree.MonitorByName(c.MonitorName)
	if !ok {
		return fmt.Errorf("%w: %s", state.ErrUnknownMonitor, c.MonitorName)
	}
	var target *container.Container
	for _, m := range st.Tree.Monitors() {
		if m != mon {
			target = m
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", ErrLastMonitor, c.MonitorName)
	}

	focusLost := false
	if f, ok := st.Focused(); ok && st.Tree.MonitorOf(f) == mon {
		focusLost = true
	}

	for _, ws := range st.Tree.ChildrenOf(mon) {
		if ws.Workspace.Displayed {
			ws.Workspace.Displayed = false
			st.Emit(events.WorkspaceDeactivated{WorkspaceID: ws.ID, Name: ws.Workspace.Name})
		}
		if err := st.Tree.MoveWithinTree(ws, target, -1); err != nil {
			return err
		}
		st.PendingSync.MarkForRedraw(ws)
	}
	if err := st.Tree.Detach(mon); err != nil {
		return err
	}
	st.Emit(events.MonitorRemoved{MonitorID: mon.ID, Name: c.MonitorName})

	if focusLost {
		st.ClearFocus()
		if ws := st.DisplayedWorkspace(target); ws != nil {
			if err := focus.FocusWorkspace(st, ws); err != nil {
				return err
			}
		}
	}

	logging.Info().Str("monitor", c.MonitorName).Str("workspacesTo", target.Monitor.Name).Msg("monitor removed")
	return nil
}

func reloadConfig(st *state.WmState, env *Env, c *ReloadConfig) error {
	cfg := c.Config
	if cfg == nil {
		path := c.Path
		if path == "" {
			path = env.Config.Path()
		}
		loaded, err := config.LoadOrDefault(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	for _, mon := range st.Tree.Monitors() {
		if err := populateMonitor(st, cfg, mon); err != nil {
			return err
		}
	}
	env.Config = cfg
	st.Emit(events.ConfigReloaded{Path: cfg.Path()})

	logging.Info().Str("path", cfg.Path()).Int("windowRules", len(cfg.WindowRules)).Msg("config reloaded")
	return nil
}
