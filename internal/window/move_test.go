package window

import (
	"errors"
	"testing"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/types"
)

func childrenOf(t *testing.T, tree *container.Tree, p *container.Container, want ...*container.Container) {
	t.Helper()
	got := tree.ChildrenOf(p)
	if len(got) != len(want) {
		t.Fatalf("children of %v = %v, want %v", p, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("children[%d] of %v = %v, want %v", i, p, got[i], want[i])
		}
	}
}

func TestMoveWindowSwap(t *testing.T) {
	st, ws, wins := newTestState(t, 3)

	if err := MoveWindow(st, wins[0], types.DirRight); err != nil {
		t.Fatalf("MoveWindow() error = %v", err)
	}
	childrenOf(t, st.Tree, ws, wins[1], wins[0], wins[2])

	if err := MoveWindow(st, wins[2], types.DirLeft); err != nil {
		t.Fatal(err)
	}
	childrenOf(t, st.Tree, ws, wins[1], wins[2], wins[0])

	evts := st.TakeEvents()
	if len(evts) != 2 || evts[0].Kind() != events.KindContainerMoved {
		t.Errorf("events = %v, want two container_moved", evts)
	}
	if !st.PendingSync.Contains(ws.ID) {
		t.Error("parent should be marked for redraw")
	}
}

func TestMoveWindowIntoAndOutOfSplit(t *testing.T) {
	st, ws, wins := newTestState(t, 2)
	split := container.NewSplit(types.TilingVertical)
	inner := container.NewWindow(container.WindowData{Handle: 20})
	if err := st.Tree.ReplaceInPlace(wins[1], split); err != nil {
		t.Fatal(err)
	}
	_ = st.Tree.Attach(wins[1], split, -1)
	_ = st.Tree.Attach(inner, split, -1)
	wins[1].SizeRatio, inner.SizeRatio = 0.5, 0.5

	// Moving right from the workspace edge enters the split at the front.
	if err := MoveWindow(st, wins[0], types.DirRight); err != nil {
		t.Fatal(err)
	}
	if p, _ := st.Tree.ParentOf(wins[0]); p != split {
		t.Fatalf("parent = %v, want split", p)
	}
	childrenOf(t, st.Tree, split, wins[0], wins[1], inner)
	assertRatiosSumToOne(t, st.Tree, split)

	// Moving left out of a vertical split lands next to it in the workspace.
	if err := MoveWindow(st, inner, types.DirLeft); err != nil {
		t.Fatal(err)
	}
	childrenOf(t, st.Tree, ws, inner, split)
	assertRatiosSumToOne(t, st.Tree, ws)
	assertRatiosSumToOne(t, st.Tree, split)
}

func TestMoveWindowLeavesSingleChildSplit(t *testing.T) {
	st, ws, wins := newTestState(t, 1)
	split := container.NewSplit(types.TilingVertical)
	a := container.NewWindow(container.WindowData{Handle: 10})
	b := container.NewWindow(container.WindowData{Handle: 11})
	_ = st.Tree.Attach(split, ws, -1)
	_ = st.Tree.Attach(a, split, -1)
	_ = st.Tree.Attach(b, split, -1)
	wins[0].SizeRatio, split.SizeRatio = 0.5, 0.5
	a.SizeRatio, b.SizeRatio = 0.5, 0.5

	if err := MoveWindow(st, b, types.DirRight); err != nil {
		t.Fatal(err)
	}
	// The split kept only a, so a takes its place.
	childrenOf(t, st.Tree, ws, wins[0], a, b)
	if st.Tree.Contains(split) {
		t.Error("split should be flattened")
	}
	assertRatiosSumToOne(t, st.Tree, ws)
}

func TestMoveWindowChangesWorkspaceAxis(t *testing.T) {
	st, ws, wins := newTestState(t, 3)

	if err := MoveWindow(st, wins[2], types.DirDown); err != nil {
		t.Fatal(err)
	}
	if ws.Workspace.TilingDirection != types.TilingVertical {
		t.Errorf("workspace direction = %v, want vertical", ws.Workspace.TilingDirection)
	}

	children := st.Tree.ChildrenOf(ws)
	if len(children) != 2 || children[1] != wins[2] {
		t.Fatalf("children = %v, want [split win2]", children)
	}
	split := children[0]
	if split.Kind != container.KindSplit || split.Split.TilingDirection != types.TilingHorizontal {
		t.Errorf("children[0] = %v, want horizontal split", split)
	}
	childrenOf(t, st.Tree, split, wins[0], wins[1])
	assertRatiosSumToOne(t, st.Tree, ws)
	assertRatiosSumToOne(t, st.Tree, split)

	// A lone tiling window has nowhere to go.
	lone, lws, lw := newTestState(t, 1)
	if err := MoveWindow(lone, lw[0], types.DirUp); err != nil {
		t.Fatal(err)
	}
	if lws.Workspace.TilingDirection != types.TilingHorizontal {
		t.Error("a lone window should not change the workspace axis")
	}
}

func TestMoveWindowToAdjacentMonitor(t *testing.T) {
	st, ws, wins := newTestState(t, 2)
	right := container.NewMonitor("HDMI-1", types.Rect{X: 1000, Width: 1000, Height: 500}, false)
	other := container.NewWorkspace("2", types.TilingHorizontal)
	other.Workspace.Displayed = true
	_ = st.Tree.Attach(right, st.Tree.Root(), -1)
	_ = st.Tree.Attach(other, right, -1)
	st.SetFocused(wins[1])

	if err := MoveWindow(st, wins[1], types.DirRight); err != nil {
		t.Fatal(err)
	}
	if st.Tree.WorkspaceOf(wins[1]) != other {
		t.Fatalf("workspace = %v, want the adjacent monitor's", st.Tree.WorkspaceOf(wins[1]))
	}
	assertRatiosSumToOne(t, st.Tree, ws)
	assertRatiosSumToOne(t, st.Tree, other)

	// Moving further right has no monitor to go to.
	if err := MoveWindow(st, wins[1], types.DirRight); err != nil {
		t.Fatal(err)
	}
	if st.Tree.WorkspaceOf(wins[1]) != other {
		t.Error("window should stay put at the last monitor")
	}
}

func TestMoveWindowRejectsNonTiling(t *testing.T) {
	st, _, wins := newTestState(t, 2)
	wins[0].Window.State = types.StateFloating

	if err := MoveWindow(st, wins[0], types.DirRight); !errors.Is(err, ErrNotTiling) {
		t.Errorf("MoveWindow(floating) error = %v, want ErrNotTiling", err)
	}
}

func TestMoveWindowToWorkspace(t *testing.T) {
	st, ws, wins := newTestState(t, 2)
	mon := st.Tree.MonitorOf(ws)
	hidden := container.NewWorkspace("2", types.TilingHorizontal)
	_ = st.Tree.Attach(hidden, mon, -1)
	st.SetFocused(wins[0])
	st.SetFocused(wins[1])
	st.TakeEvents()

	if err := MoveWindowToWorkspace(st, wins[1], hidden); err != nil {
		t.Fatalf("MoveWindowToWorkspace() error = %v", err)
	}
	childrenOf(t, st.Tree, hidden, wins[1])
	if wins[1].SizeRatio != 1 {
		t.Errorf("moved ratio = %f, want 1", wins[1].SizeRatio)
	}
	if wins[0].SizeRatio != 1 {
		t.Errorf("remaining ratio = %f, want 1", wins[0].SizeRatio)
	}
	if got, _ := st.Focused(); got != wins[0] {
		t.Errorf("focused = %v, want win0 on the source workspace", got)
	}
	if hidden.Workspace.Displayed {
		t.Error("target workspace should stay hidden")
	}
	if !st.PendingSync.Contains(wins[1].ID) {
		t.Error("moved window should be marked for redraw")
	}

	// Moving to the workspace it is already on is a no-op.
	st.TakeEvents()
	if err := MoveWindowToWorkspace(st, wins[1], hidden); err != nil {
		t.Fatal(err)
	}
	if st.Staged() != 0 {
		t.Errorf("Staged() = %d, want 0", st.Staged())
	}
}
