package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/yourusername/tilewm/internal/models"
	"github.com/yourusername/tilewm/internal/types"
)

func init() {
	color.NoColor = true
}

func sample() *models.MonitorsResult {
	float := types.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	return &models.MonitorsResult{
		FocusedID: "bbbbbbbb-0000",
		Monitors: []*models.Container{{
			ID: "m", Type: models.ContainerMonitor, Name: "DP-1", Primary: true,
			Rect: types.Rect{Width: 1920, Height: 1080},
			Children: []*models.Container{
				{
					ID: "w1", Type: models.ContainerWorkspace, Name: "1", Displayed: true, TilingDirection: "horizontal",
					Children: []*models.Container{
						{ID: "aaaaaaaa-0000", Type: models.ContainerWindow, Title: "editor", State: "tiling", SizeRatio: 0.5,
							Rect: types.Rect{Width: 960, Height: 1080}},
						{ID: "bbbbbbbb-0000", Type: models.ContainerWindow, ProcessName: "term", State: "tiling", SizeRatio: 0.5, HasFocus: true,
							Rect: types.Rect{X: 960, Width: 960, Height: 1080}},
						{ID: "cccccccc-0000", Type: models.ContainerWindow, Handle: 0xbeef, State: "floating", FloatingRect: &float},
					},
				},
				{ID: "w2", Type: models.ContainerWorkspace, Name: "2", TilingDirection: "vertical"},
			},
		}},
	}
}

func TestPrintTree(t *testing.T) {
	var buf bytes.Buffer
	PrintTree(&buf, sample(), VisualizationOptions{})

	want := []string{
		"monitor DP-1 1920x1080 @ (0, 0)",
		"  workspace 1 [displayed] horizontal",
		"    editor tiling 0.50",
		"    term * tiling 0.50",
		"    0xbeef floating",
		"  workspace 2 vertical",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("PrintTree printed %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMonitorsTable(t *testing.T) {
	var buf bytes.Buffer
	PrintMonitorsTable(&buf, sample())

	out := buf.String()
	for _, s := range []string{"DP-1 (primary)", "horizontal", "vertical"} {
		if !strings.Contains(out, s) {
			t.Errorf("table missing %q:\n%s", s, out)
		}
	}
}

func TestWindowsTable(t *testing.T) {
	res := &models.WindowsResult{
		FocusedID: "bbbbbbbb-0000",
		Windows:   sample().Monitors[0].Windows(),
	}
	var buf bytes.Buffer
	PrintWindowsTable(&buf, res)

	out := buf.String()
	for _, s := range []string{"editor", "0xbeef", "400x300", "bbbbbbbb"} {
		if !strings.Contains(out, s) {
			t.Errorf("table missing %q:\n%s", s, out)
		}
	}
}

func TestVisualizeMonitor(t *testing.T) {
	opts := VisualizationOptions{MaxWidth: 82, MaxHeight: 22}
	out := VisualizeMonitor(sample().Monitors[0], opts)

	if !strings.HasPrefix(out, "Monitor DP-1 [1920x1080 @ (0, 0)] workspace 1\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	for _, s := range []string{"editor", "term", "Total: 3 windows"} {
		if !strings.Contains(out, s) {
			t.Errorf("visualization missing %q:\n%s", s, out)
		}
	}
}

func TestVisualizeMonitorWithoutWorkspace(t *testing.T) {
	mon := &models.Container{Type: models.ContainerMonitor, Name: "HDMI-1", Rect: types.Rect{Width: 800, Height: 600}}
	out := VisualizeMonitor(mon, VisualizationOptions{MaxWidth: 40, MaxHeight: 10})
	if !strings.Contains(out, "no workspace displayed") {
		t.Errorf("VisualizeMonitor() = %q", out)
	}
}

func TestProject(t *testing.T) {
	sc := NewScalingContext(types.Rect{Width: 1000, Height: 500}, 102, 27)

	tests := []struct {
		name       string
		rect       types.Rect
		x, y, w, h int
	}{
		{"left half", types.Rect{Width: 500, Height: 500}, 1, 1, 50, 25},
		{"right half", types.Rect{X: 500, Width: 500, Height: 500}, 51, 1, 50, 25},
		{"tiny", types.Rect{X: 10, Y: 10, Width: 1, Height: 1}, 2, 1, 3, 2},
	}

	for _, tt := range tests {
		x, y, w, h := sc.Project(tt.rect)
		if x != tt.x || y != tt.y || w != tt.w || h != tt.h {
			t.Errorf("%s: Project = (%d,%d,%d,%d), want (%d,%d,%d,%d)", tt.name, x, y, w, h, tt.x, tt.y, tt.w, tt.h)
		}
	}
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	PrintEvent(&buf, &models.Event{EventType: "focus_changed", Seq: 7, Timestamp: ts, Data: map[string]interface{}{"containerId": "x"}})

	if got, want := buf.String(), "15:04:05 #7 focus_changed containerId=x\n"; got != want {
		t.Errorf("PrintEvent() = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"a long window title", 10, "a long ..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
