package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sys/unix"

	"github.com/yourusername/tilewm/internal/models"
)

// VisualizationOptions controls the appearance of the visualization
type VisualizationOptions struct {
	UseUnicode bool
	ShowIDs    bool
	MaxWidth   int
	MaxHeight  int
}

// DefaultVisualizationOptions sizes the canvas to the terminal
func DefaultVisualizationOptions() VisualizationOptions {
	width, height := getTerminalSize()
	height -= 4
	if height < 10 {
		height = 10
	}
	if width < 20 {
		width = 20
	}
	return VisualizationOptions{
		UseUnicode: supportsUnicode(),
		MaxWidth:   width,
		MaxHeight:  height,
	}
}

var (
	monitorColor   = color.New(color.FgCyan, color.Bold)
	workspaceColor = color.New(color.FgBlue)
	splitColor     = color.New(color.FgHiBlack)
	windowColor    = color.New(color.FgWhite)
	focusColor     = color.New(color.FgGreen, color.Bold)
	dimColor       = color.New(color.FgHiBlack)
)

// PrintTree prints the container tree, one node per line
func PrintTree(w io.Writer, res *models.MonitorsResult, opts VisualizationOptions) {
	for _, mon := range res.Monitors {
		printNode(w, mon, 0, opts)
	}
}

func printNode(w io.Writer, c *models.Container, depth int, opts VisualizationOptions) {
	var line string
	switch c.Type {
	case models.ContainerMonitor:
		line = monitorColor.Sprintf("monitor %s", c.Name)
		line += dimColor.Sprintf(" %s", models.FormatRect(c.Rect))
	case models.ContainerWorkspace:
		line = workspaceColor.Sprintf("workspace %s", c.Name)
		if c.Displayed {
			line += dimColor.Sprint(" [displayed]")
		}
		line += dimColor.Sprintf(" %s", c.TilingDirection)
	case models.ContainerSplit:
		line = splitColor.Sprintf("split %s", c.TilingDirection)
		line += dimColor.Sprintf(" %.2f", c.SizeRatio)
	case models.ContainerWindow:
		label := c.Label()
		if c.HasFocus {
			line = focusColor.Sprintf("%s *", label)
		} else {
			line = windowColor.Sprint(label)
		}
		line += dimColor.Sprintf(" %s", c.State)
		if c.State == "tiling" {
			line += dimColor.Sprintf(" %.2f", c.SizeRatio)
		}
	default:
		line = c.Type
	}
	if c.Type != models.ContainerWindow && c.HasFocus {
		line += focusColor.Sprint(" *")
	}
	if opts.ShowIDs {
		line += dimColor.Sprintf(" (%s)", models.ShortID(c.ID))
	}

	fmt.Fprintf(w, "%s%s\n", indent(depth), line)
	for _, child := range c.Children {
		printNode(w, child, depth+1, opts)
	}
}

// VisualizeMonitor draws the windows of a monitor's displayed workspace at
// their positions. Minimized windows are skipped and floating ones are
// drawn over tiled ones.
func VisualizeMonitor(mon *models.Container, opts VisualizationOptions) string {
	var ws *models.Container
	for _, child := range mon.Children {
		if child.Displayed {
			ws = child
			break
		}
	}

	header := fmt.Sprintf("Monitor %s [%s]", mon.Name, models.FormatRect(mon.Rect))
	if ws == nil {
		return header + " (no workspace displayed)\n"
	}
	header += fmt.Sprintf(" workspace %s\n", ws.Name)

	windows := ws.Windows()
	if len(windows) == 0 {
		return header + "(no windows)\n"
	}

	var visible []*models.Container
	for _, win := range windows {
		if win.State != "minimized" {
			visible = append(visible, win)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].FloatingRect == nil && visible[j].FloatingRect != nil
	})

	sc := NewScalingContext(mon.Rect, opts.MaxWidth, opts.MaxHeight)
	canvas := NewCanvas(opts.MaxWidth, opts.MaxHeight, opts.UseUnicode)
	canvas.DrawBox(0, 0, opts.MaxWidth, opts.MaxHeight)

	for _, win := range visible {
		rect := win.Rect
		if win.FloatingRect != nil {
			rect = *win.FloatingRect
		}
		x, y, w, h := sc.Project(rect)
		if win.HasFocus && opts.UseUnicode {
			canvas.DrawStyledBox(x, y, w, h, FocusStyle)
		} else {
			canvas.DrawBox(x, y, w, h)
		}
		if h >= 3 && w > 2 {
			canvas.DrawText(x+1, y+1, windowLabel(win, opts.ShowIDs), w-2)
		}
	}

	footer := fmt.Sprintf("\nTotal: %d windows\n", len(windows))
	return header + canvas.String() + footer
}

// PrintVisualization prints every monitor, colored when enabled
func PrintVisualization(w io.Writer, res *models.MonitorsResult, opts VisualizationOptions) {
	if len(res.Monitors) == 0 {
		fmt.Fprintln(w, "No monitors")
		return
	}

	var sb strings.Builder
	for i, mon := range res.Monitors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(VisualizeMonitor(mon, opts))
	}

	if color.NoColor {
		fmt.Fprint(w, sb.String())
		return
	}
	color.New(color.FgCyan).Fprint(w, sb.String())
}

// PrintEvent prints one event as a single line
func PrintEvent(w io.Writer, ev *models.Event) {
	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", k, ev.Data[k]))
	}
	fmt.Fprintf(w, "%s %s %s %s\n",
		dimColor.Sprint(ev.Timestamp.Format(time.TimeOnly)),
		dimColor.Sprintf("#%d", ev.Seq),
		focusColor.Sprint(ev.EventType),
		strings.Join(fields, " "))
}

func windowLabel(win *models.Container, showID bool) string {
	label := win.Label()
	if showID {
		return fmt.Sprintf("[%s] %s", models.ShortID(win.ID), label)
	}
	return label
}

// getTerminalSize returns the current terminal dimensions
func getTerminalSize() (width, height int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// supportsUnicode checks if the terminal supports Unicode
func supportsUnicode() bool {
	lang := os.Getenv("LANG")
	lcAll := os.Getenv("LC_ALL")
	return strings.Contains(lang, "UTF-8") || strings.Contains(lcAll, "UTF-8")
}
