package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/models"
	"github.com/yourusername/tilewm/internal/server"
	"github.com/yourusername/tilewm/internal/types"
	"github.com/yourusername/tilewm/internal/wm"
)

func startServer(t *testing.T) string {
	t.Helper()
	mgr := wm.New(wm.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = mgr.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-mgr.Done()
	})

	srv := server.New(mgr, server.Options{})
	web := httptest.NewServer(srv.Handler())
	t.Cleanup(web.Close)
	t.Cleanup(func() {
		sctx, scancel := context.WithTimeout(context.Background(), time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	})
	return strings.TrimPrefix(web.URL, "http://")
}

func TestClientRoundTrip(t *testing.T) {
	addr := startServer(t)
	ctx := context.Background()
	c := NewClient(addr, 2*time.Second)
	require.NoError(t, c.Connect(ctx))
	defer c.Close()

	_, err := c.Command(ctx, &command.AddMonitor{MonitorName: "DP-1", Rect: types.Rect{Width: 800, Height: 600}, Primary: true})
	require.NoError(t, err)

	evts, err := c.Subscribe(ctx, "window_managed")
	require.NoError(t, err)

	res, err := c.Command(ctx, &command.ManageWindow{Handle: 9, Title: "shell"})
	require.NoError(t, err)
	assert.NotEmpty(t, res["windowId"])

	select {
	case ev := <-evts:
		assert.Equal(t, "window_managed", ev.EventType)
		assert.Equal(t, res["windowId"], ev.Data["windowId"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	mons, err := c.Monitors(ctx)
	require.NoError(t, err)
	require.Len(t, mons.Monitors, 1)
	assert.Len(t, mons.Monitors[0].Windows(), 1)

	wins, err := c.Windows(ctx)
	require.NoError(t, err)
	require.Len(t, wins.Windows, 1)
	assert.Equal(t, "shell", wins.Windows[0].Title)
}

func TestClientServerError(t *testing.T) {
	addr := startServer(t)
	ctx := context.Background()
	c := NewClient(addr, 2*time.Second)
	defer c.Close()

	// request connects on demand
	_, err := c.Command(ctx, &command.RemoveMonitor{MonitorName: "nope"})
	var serr *ServerError
	require.True(t, errors.As(err, &serr), "got %v", err)
	assert.Equal(t, models.CodeNotFound, serr.Code)

	_, err = c.CallMethod(ctx, "reboot", nil)
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, models.CodeUnknownMethod, serr.Code)
}

func TestConnectRefused(t *testing.T) {
	c := NewClient("127.0.0.1:1", time.Second)
	assert.Error(t, c.Connect(context.Background()))
	assert.False(t, c.conn.IsConnected())
}
