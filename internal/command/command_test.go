package command

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
	"github.com/yourusername/tilewm/internal/window"
)

const testConfig = `
workspaces:
  - name: "1"
    monitor: primary
  - name: "2"
    monitor: primary
  - name: "3"
    monitor: HDMI-1
windowRules:
  - match: ["process=mpv"]
    initialState: floating
  - match: ["class=Steam"]
    workspace: games
monitorRules:
  - monitor: HDMI-1
    allowFullscreen: false
`

func loadConfig(t *testing.T, data string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfigFromBytes([]byte(data), "yaml")
	if err != nil {
		t.Fatalf("LoadConfigFromBytes() error = %v", err)
	}
	return cfg
}

func mustExec(t *testing.T, st *state.WmState, env *Env, cmd Command) Result {
	t.Helper()
	res, err := Execute(st, env, cmd)
	if err != nil {
		t.Fatalf("Execute(%s) error = %v", cmd.Name(), err)
	}
	return res
}

// newTestState registers the primary monitor DP-1 under testConfig
func newTestState(t *testing.T) (*state.WmState, *Env) {
	t.Helper()
	st := state.NewWmState()
	env := NewEnv(loadConfig(t, testConfig))
	mustExec(t, st, env, &AddMonitor{MonitorName: "DP-1", Rect: types.Rect{Width: 1920, Height: 1080}, Primary: true})
	return st, env
}

func kinds(evts []events.WmEvent) []events.Kind {
	out := make([]events.Kind, len(evts))
	for i, e := range evts {
		out[i] = e.Kind()
	}
	return out
}

func hasKind(evts []events.WmEvent, k events.Kind) bool {
	for _, e := range evts {
		if e.Kind() == k {
			return true
		}
	}
	return false
}

func workspace(t *testing.T, st *state.WmState, name string) *container.Container {
	t.Helper()
	ws, ok := st.Tree.WorkspaceByName(name)
	if !ok {
		t.Fatalf("workspace %q not found", name)
	}
	return ws
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Name
		wantErr error
	}{
		{"toggle", `{"command":"toggle_window_state","state":"floating"}`, NameToggleWindowState, nil},
		{"set with id", `{"command":"set_window_state","windowId":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","state":"minimized"}`, NameSetWindowState, nil},
		{"resize", `{"command":"resize_window","delta":0.2}`, NameResizeWindow, nil},
		{"cycle", `{"command":"cycle_focus"}`, NameCycleFocus, nil},
		{"unknown state", `{"command":"toggle_window_state","state":"maximized"}`, "", ErrInvalidCommand},
		{"missing state", `{"command":"set_window_state"}`, "", ErrInvalidCommand},
		{"bad direction", `{"command":"focus_direction","direction":"sideways"}`, "", ErrInvalidCommand},
		{"nil container", `{"command":"focus","containerId":"00000000-0000-0000-0000-000000000000"}`, "", ErrInvalidCommand},
		{"zero delta", `{"command":"resize_window","delta":0}`, "", ErrInvalidCommand},
		{"empty monitor", `{"command":"add_monitor","name":"DP-1","rect":{"width":0,"height":10}}`, "", ErrInvalidCommand},
		{"unknown name", `{"command":"launch_rockets"}`, "", ErrUnknownCommand},
		{"not json", `{command`, "", ErrInvalidCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if cmd.Name() != tt.want {
				t.Errorf("Name() = %v, want %v", cmd.Name(), tt.want)
			}
		})
	}
}

func TestUnknownNameIsInvalid(t *testing.T) {
	if !errors.Is(ErrUnknownCommand, ErrInvalidCommand) {
		t.Error("ErrUnknownCommand should wrap ErrInvalidCommand")
	}
}

func TestParamsRoundTrip(t *testing.T) {
	id := uuid.New()
	params, err := ToParams(&MoveWindowToWorkspace{WindowID: &id, Workspace: "web"})
	if err != nil {
		t.Fatal(err)
	}
	if params[NameKey] != "move_window_to_workspace" {
		t.Errorf("params[%q] = %v", NameKey, params[NameKey])
	}

	cmd, err := FromParams(params)
	if err != nil {
		t.Fatalf("FromParams() error = %v", err)
	}
	got, ok := cmd.(*MoveWindowToWorkspace)
	if !ok || got.WindowID == nil || *got.WindowID != id || got.Workspace != "web" {
		t.Errorf("FromParams() = %#v", cmd)
	}
}

func TestAddMonitor(t *testing.T) {
	st, env := newTestState(t)

	dp, ok := st.Tree.MonitorByName("DP-1")
	if !ok {
		t.Fatal("DP-1 not in tree")
	}
	children := st.Tree.ChildrenOf(dp)
	if len(children) != 2 || children[0].Workspace.Name != "1" || children[1].Workspace.Name != "2" {
		t.Fatalf("workspaces = %v, want [1 2]", children)
	}
	if !children[0].Workspace.Displayed || children[1].Workspace.Displayed {
		t.Error("only the first configured workspace should be displayed")
	}
	if got, _ := st.Focused(); got != children[0] {
		t.Errorf("focused = %v, want workspace 1", got)
	}
	k := kinds(st.TakeEvents())
	if len(k) < 2 || k[0] != events.KindMonitorAdded || k[1] != events.KindWorkspaceActivated {
		t.Errorf("events = %v, want monitor_added then workspace_activated", k)
	}

	// A monitor with no configured workspaces gets the next free number.
	mustExec(t, st, env, &AddMonitor{MonitorName: "eDP-1", Rect: types.Rect{X: -1280, Width: 1280, Height: 800}})
	edp, _ := st.Tree.MonitorByName("eDP-1")
	if ws := st.DisplayedWorkspace(edp); ws == nil || ws.Workspace.Name != "3" {
		t.Errorf("eDP-1 displays %v, want workspace 3", ws)
	}
	if got, _ := st.Focused(); got != children[0] {
		t.Error("adding a monitor should not move focus")
	}

	// Known monitors only change geometry.
	st.TakeEvents()
	mustExec(t, st, env, &AddMonitor{MonitorName: "DP-1", Rect: types.Rect{Width: 2560, Height: 1440}, Primary: true})
	if dp.Monitor.Rect.Width != 2560 {
		t.Errorf("Rect.Width = %v, want 2560", dp.Monitor.Rect.Width)
	}
	if st.Staged() != 0 {
		t.Errorf("Staged() = %d, want 0", st.Staged())
	}
	if len(st.Tree.Monitors()) != 2 {
		t.Errorf("monitors = %d, want 2", len(st.Tree.Monitors()))
	}
}

func TestManageWindowAppliesRules(t *testing.T) {
	st, env := newTestState(t)
	ws1 := workspace(t, st, "1")

	res := mustExec(t, st, env, &ManageWindow{Handle: 1, ProcessName: "mpv"})
	if res["state"] != "floating" {
		t.Errorf("state = %v, want floating", res["state"])
	}
	mpv, _ := st.Tree.WindowByHandle(1)
	if got, _ := st.Focused(); got != mpv {
		t.Errorf("focused = %v, want the first window on the focused empty workspace", got)
	}

	mustExec(t, st, env, &ManageWindow{Handle: 2, ClassName: "Steam"})
	steam, _ := st.Tree.WindowByHandle(2)
	games := st.Tree.WorkspaceOf(steam)
	if games == nil || games.Workspace.Name != "games" {
		t.Fatalf("workspace = %v, want games", games)
	}
	if st.Tree.MonitorOf(games).Monitor.Name != "DP-1" {
		t.Error("games should be created on the focused monitor")
	}
	if games.Workspace.Displayed {
		t.Error("games should stay hidden")
	}

	mustExec(t, st, env, &ManageWindow{Handle: 3, Title: "shell"})
	term, _ := st.Tree.WindowByHandle(3)
	if st.Tree.WorkspaceOf(term) != ws1 || term.Window.State != types.StateTiling {
		t.Errorf("plain window = %v on %v, want tiling on workspace 1", term, st.Tree.WorkspaceOf(term))
	}

	if _, err := Execute(st, env, &ManageWindow{Handle: 3}); !errors.Is(err, window.ErrAlreadyManaged) {
		t.Errorf("duplicate manage error = %v, want ErrAlreadyManaged", err)
	}

	mustExec(t, st, env, &UnmanageWindow{Handle: 3})
	if _, ok := st.Tree.WindowByHandle(3); ok {
		t.Error("window 3 should be gone")
	}
	if _, err := Execute(st, env, &UnmanageWindow{Handle: 3}); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("unknown handle error = %v, want ErrUnknownHandle", err)
	}
}

func TestMonitorPolicy(t *testing.T) {
	st, env := newTestState(t)
	mustExec(t, st, env, &AddMonitor{MonitorName: "HDMI-1", Rect: types.Rect{X: 1920, Width: 1920, Height: 1080}})
	mustExec(t, st, env, &ManageWindow{Handle: 1, Workspace: "3"})
	mustExec(t, st, env, &ManageWindow{Handle: 2, Workspace: "1"})
	onHDMI, _ := st.Tree.WindowByHandle(1)
	onDP, _ := st.Tree.WindowByHandle(2)

	_, err := Execute(st, env, &ToggleWindowState{WindowID: &onHDMI.ID, State: types.StateFullscreen})
	if !errors.Is(err, window.ErrPolicyRejection) || !errors.Is(err, config.ErrDenied) {
		t.Errorf("fullscreen on HDMI-1 error = %v, want policy rejection", err)
	}
	if onHDMI.Window.State != types.StateTiling {
		t.Errorf("State = %v, want tiling", onHDMI.Window.State)
	}

	res := mustExec(t, st, env, &ToggleWindowState{WindowID: &onDP.ID, State: types.StateFullscreen})
	if res["state"] != "fullscreen" {
		t.Errorf("state = %v, want fullscreen", res["state"])
	}
}

func TestFocusWorkspaceCreatesOnDemand(t *testing.T) {
	st, env := newTestState(t)
	ws1 := workspace(t, st, "1")
	st.TakeEvents()

	mustExec(t, st, env, &FocusWorkspace{Workspace: "web"})
	web := workspace(t, st, "web")
	if !web.Workspace.Displayed || ws1.Workspace.Displayed {
		t.Error("web should replace workspace 1 on DP-1")
	}
	if got, _ := st.Focused(); got != web {
		t.Errorf("focused = %v, want web", got)
	}
	evts := st.TakeEvents()
	if !hasKind(evts, events.KindWorkspaceDeactivated) || !hasKind(evts, events.KindWorkspaceActivated) {
		t.Errorf("events = %v, want deactivate and activate", kinds(evts))
	}
}

func TestMoveWindowToWorkspaceCommand(t *testing.T) {
	st, env := newTestState(t)
	mustExec(t, st, env, &ManageWindow{Handle: 1})
	mustExec(t, st, env, &ManageWindow{Handle: 2})
	w, _ := st.Tree.WindowByHandle(1)

	mustExec(t, st, env, &MoveWindowToWorkspace{WindowID: &w.ID, Workspace: "2"})
	if st.Tree.WorkspaceOf(w) != workspace(t, st, "2") {
		t.Errorf("workspace = %v, want 2", st.Tree.WorkspaceOf(w))
	}
}

func TestRemoveMonitor(t *testing.T) {
	st, env := newTestState(t)
	mustExec(t, st, env, &AddMonitor{MonitorName: "HDMI-1", Rect: types.Rect{X: 1920, Width: 1920, Height: 1080}})
	mustExec(t, st, env, &FocusWorkspace{Workspace: "3"})
	ws1, ws3 := workspace(t, st, "1"), workspace(t, st, "3")
	st.TakeEvents()

	mustExec(t, st, env, &RemoveMonitor{MonitorName: "HDMI-1"})
	if _, ok := st.Tree.MonitorByName("HDMI-1"); ok {
		t.Error("HDMI-1 should be gone")
	}
	if st.Tree.MonitorOf(ws3).Monitor.Name != "DP-1" {
		t.Error("workspace 3 should move to DP-1")
	}
	if ws3.Workspace.Displayed || !ws1.Workspace.Displayed {
		t.Error("DP-1 should keep showing workspace 1")
	}
	if got, _ := st.Focused(); got != ws1 {
		t.Errorf("focused = %v, want workspace 1", got)
	}
	if !hasKind(st.TakeEvents(), events.KindMonitorRemoved) {
		t.Error("missing monitor_removed event")
	}

	if _, err := Execute(st, env, &RemoveMonitor{MonitorName: "DP-1"}); !errors.Is(err, ErrLastMonitor) {
		t.Errorf("remove last monitor error = %v, want ErrLastMonitor", err)
	}
	if _, err := Execute(st, env, &RemoveMonitor{MonitorName: "VGA-1"}); !errors.Is(err, state.ErrUnknownMonitor) {
		t.Errorf("remove unknown monitor error = %v, want ErrUnknownMonitor", err)
	}
}

func TestResizeWindowCommand(t *testing.T) {
	st, env := newTestState(t)
	mustExec(t, st, env, &ManageWindow{Handle: 1})
	mustExec(t, st, env, &ManageWindow{Handle: 2})
	a, _ := st.Tree.WindowByHandle(1)
	b, _ := st.Tree.WindowByHandle(2)
	st.PendingSync.Drain()

	mustExec(t, st, env, &ResizeWindow{ContainerID: &a.ID, Delta: 0.1})
	if math.Abs(a.SizeRatio-0.6) > 0.0001 || math.Abs(b.SizeRatio-0.4) > 0.0001 {
		t.Errorf("ratios = %f, %f, want 0.6, 0.4", a.SizeRatio, b.SizeRatio)
	}
	if !st.PendingSync.Contains(a.ID) || !st.PendingSync.Contains(b.ID) {
		t.Error("both resized windows should be marked")
	}

	mustExec(t, st, env, &SetWindowState{WindowID: &b.ID, State: types.StateFloating})
	if _, err := Execute(st, env, &ResizeWindow{ContainerID: &b.ID, Delta: 0.1}); !errors.Is(err, window.ErrNotTiling) {
		t.Errorf("resize floating error = %v, want ErrNotTiling", err)
	}
}

func TestReloadConfig(t *testing.T) {
	st, env := newTestState(t)
	next := loadConfig(t, `
workspaces:
  - name: "9"
`)
	mustExec(t, st, env, &ReloadConfig{Config: next})

	if env.Config != next {
		t.Error("env should hold the new config")
	}
	if ws := workspace(t, st, "9"); st.Tree.MonitorOf(ws).Monitor.Name != "DP-1" {
		t.Error("workspace 9 should be created on the primary monitor")
	}
	if !hasKind(st.TakeEvents(), events.KindConfigReloaded) {
		t.Error("missing config_reloaded event")
	}
}

func TestExecuteWithoutFocus(t *testing.T) {
	st := state.NewWmState()
	env := NewEnv(nil)

	if _, err := Execute(st, env, &ToggleWindowState{State: types.StateFloating}); !errors.Is(err, state.ErrNoFocus) {
		t.Errorf("error = %v, want ErrNoFocus", err)
	}
	if _, err := Execute(st, env, &FocusWorkspace{Workspace: "1"}); !errors.Is(err, state.ErrUnknownMonitor) {
		t.Errorf("error = %v, want ErrUnknownMonitor", err)
	}
}
