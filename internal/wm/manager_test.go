package wm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/layout"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
	"github.com/yourusername/tilewm/internal/window"
)

// recorder is a driver that keeps every batch it receives
type recorder struct {
	mu      sync.Mutex
	batches [][]*container.Container
}

func (r *recorder) Apply(_ context.Context, _ *container.Tree, batch []*container.Container) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func startManager(t *testing.T, driver layout.Driver) (*Manager, context.CancelFunc) {
	t.Helper()
	m := New(Options{Driver: driver, QueueSize: 8})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-m.Done()
	})

	_, err := m.Execute(ctx, &command.AddMonitor{MonitorName: "DP-1", Rect: types.Rect{Width: 1920, Height: 1080}, Primary: true})
	require.NoError(t, err)
	return m, cancel
}

func receive(t *testing.T, sub *events.Subscription) events.Published {
	t.Helper()
	select {
	case p, ok := <-sub.C():
		require.True(t, ok, "subscription closed: %v", sub.Err())
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return events.Published{}
}

func TestExecutePublishesAndRedraws(t *testing.T) {
	drv := &recorder{}
	m, _ := startManager(t, drv)
	sub := m.Bus().Subscribe(events.NewFilter(events.KindWindowManaged, events.KindWindowStateChanged))
	defer sub.Close()
	ctx := context.Background()

	res, err := m.Execute(ctx, &command.ManageWindow{Handle: 7, Title: "editor"})
	require.NoError(t, err)
	assert.NotEmpty(t, res["windowId"])

	p := receive(t, sub)
	assert.Equal(t, events.KindWindowManaged, p.Event.Kind())

	_, err = m.Execute(ctx, &command.ToggleWindowState{State: types.StateFloating})
	require.NoError(t, err)
	next := receive(t, sub)
	assert.Equal(t, events.KindWindowStateChanged, next.Event.Kind())
	assert.Greater(t, next.Seq, p.Seq)

	assert.GreaterOrEqual(t, drv.count(), 3, "monitor, manage and toggle should each redraw")
}

func TestAckPrecedesEvents(t *testing.T) {
	m, _ := startManager(t, nil)
	sub := m.Bus().Subscribe(events.Filter{})
	defer sub.Close()

	acked := make(chan int, 1)
	err := m.Submit(context.Background(), &command.ManageWindow{Handle: 1}, func(_ command.Result, err error) {
		// Nothing from this command may have reached subscribers yet.
		acked <- len(sub.C())
	})
	require.NoError(t, err)

	select {
	case pending := <-acked:
		assert.Equal(t, 0, pending)
	case <-time.After(2 * time.Second):
		t.Fatal("no ack")
	}
	assert.Equal(t, events.KindWindowManaged, receive(t, sub).Event.Kind())
}

func TestFailedCommandCommitsNothing(t *testing.T) {
	drv := &recorder{}
	m, _ := startManager(t, drv)
	ctx := context.Background()

	_, err := m.Execute(ctx, &command.ManageWindow{Handle: 1})
	require.NoError(t, err)
	before := drv.count()
	shape := treeShape(t, m)

	sub := m.Bus().Subscribe(events.Filter{})
	defer sub.Close()

	tests := []struct {
		name string
		cmd  command.Command
		want error
	}{
		{"duplicate handle", &command.ManageWindow{Handle: 1, Workspace: "scratch"}, window.ErrAlreadyManaged},
		// The workspace is created before the state is rejected.
		{"bad initial state", &command.ManageWindow{Handle: 2, Workspace: "ghost", State: "sideways"}, window.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Execute(ctx, tt.cmd)
			require.ErrorIs(t, err, tt.want)

			var pending int
			require.NoError(t, m.Query(ctx, func(st *state.WmState) {
				pending = st.PendingSync.Len() + st.Staged()
			}))
			assert.Equal(t, 0, pending)
			assert.Equal(t, shape, treeShape(t, m), "tree changed by a failed command")
			assert.Equal(t, before, drv.count(), "driver should not run for a failed command")
			assert.Len(t, sub.C(), 0)
		})
	}
}

func TestRollbackKeepsFocus(t *testing.T) {
	m, _ := startManager(t, nil)
	ctx := context.Background()

	_, err := m.Execute(ctx, &command.ManageWindow{Handle: 1})
	require.NoError(t, err)
	var focused string
	require.NoError(t, m.Query(ctx, func(st *state.WmState) { focused = st.FocusedID().String() }))

	_, err = m.Execute(ctx, &command.ManageWindow{Handle: 2, Workspace: "ghost", State: "sideways"})
	require.Error(t, err)

	// The next command runs against the restored tree.
	res, err := m.Execute(ctx, &command.ToggleWindowState{State: types.StateFloating})
	require.NoError(t, err)
	assert.Equal(t, focused, res["windowId"])
}

// treeShape renders the tree as one line per container
func treeShape(t *testing.T, m *Manager) []string {
	t.Helper()
	var out []string
	require.NoError(t, m.Query(context.Background(), func(st *state.WmState) {
		st.Tree.Walk(st.Tree.Root(), func(c *container.Container) bool {
			out = append(out, fmt.Sprintf("%s %s %.3f", c, c.Name(), c.SizeRatio))
			return true
		})
	}))
	return out
}

func TestQuery(t *testing.T) {
	m, _ := startManager(t, nil)

	var names []string
	err := m.Query(context.Background(), func(st *state.WmState) {
		for _, ws := range st.Tree.Workspaces() {
			names = append(names, ws.Workspace.Name)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, names)

	err = m.Query(context.Background(), func(*state.WmState) { panic("boom") })
	require.ErrorIs(t, err, ErrInternal)

	// The writer survives the panic.
	_, err = m.Execute(context.Background(), &command.FocusWorkspace{Workspace: "2"})
	assert.NoError(t, err)
}

func TestDriverPanicDoesNotStopManager(t *testing.T) {
	var calls int
	drv := layout.DriverFunc(func(context.Context, *container.Tree, []*container.Container) error {
		calls++
		if calls > 1 {
			panic("driver bug")
		}
		return nil
	})
	m, _ := startManager(t, drv)

	_, err := m.Execute(context.Background(), &command.ManageWindow{Handle: 1})
	require.NoError(t, err)
	_, err = m.Execute(context.Background(), &command.ManageWindow{Handle: 2})
	assert.NoError(t, err)
}

func TestStoppedManager(t *testing.T) {
	m, cancel := startManager(t, nil)
	cancel()
	<-m.Done()

	_, err := m.Execute(context.Background(), &command.CycleFocus{})
	assert.True(t, errors.Is(err, ErrStopped), "Execute() error = %v", err)
	assert.ErrorIs(t, m.Query(context.Background(), func(*state.WmState) {}), ErrStopped)
}
