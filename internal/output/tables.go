package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/tilewm/internal/models"
)

// PrintWindowsTable prints windows in a table format, focused window marked
func PrintWindowsTable(w io.Writer, res *models.WindowsResult) {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Handle", "Title", "Process", "State", "Size", "Focus")

	for _, win := range res.Windows {
		focus := ""
		if win.ID == res.FocusedID {
			focus = "*"
		}
		state := win.State
		if win.PrevState != "" {
			state = fmt.Sprintf("%s (was %s)", win.State, win.PrevState)
		}
		rect := win.Rect
		if win.FloatingRect != nil {
			rect = *win.FloatingRect
		}

		table.Append(
			models.ShortID(win.ID),
			fmt.Sprintf("0x%x", win.Handle),
			truncate(win.Title, 30),
			truncate(win.ProcessName, 20),
			state,
			fmt.Sprintf("%.0fx%.0f", rect.Width, rect.Height),
			focus,
		)
	}

	table.Render()
}

// PrintMonitorsTable prints one row per workspace, grouped by monitor
func PrintMonitorsTable(w io.Writer, res *models.MonitorsResult) {
	table := tablewriter.NewWriter(w)
	table.Header("Monitor", "Resolution", "Workspace", "Displayed", "Tiling", "Windows")

	for _, mon := range res.Monitors {
		name := mon.Name
		if mon.Primary {
			name += " (primary)"
		}
		resolution := models.FormatRect(mon.Rect)

		if len(mon.Children) == 0 {
			table.Append(name, resolution, "-", "", "", "0")
			continue
		}
		for i, ws := range mon.Children {
			displayed := ""
			if ws.Displayed {
				displayed = "yes"
			}
			if i > 0 {
				name, resolution = "", ""
			}
			table.Append(
				name,
				resolution,
				ws.Name,
				displayed,
				ws.TilingDirection,
				fmt.Sprintf("%d", len(ws.Windows())),
			)
		}
	}

	table.Render()
}

// PrintWindowDetail prints detailed information about a single window
func PrintWindowDetail(w io.Writer, win *models.Container) {
	fmt.Fprintf(w, "Window ID: %s\n", win.ID)
	fmt.Fprintf(w, "Handle: 0x%x\n", win.Handle)
	fmt.Fprintf(w, "Title: %s\n", win.Title)
	fmt.Fprintf(w, "Process: %s\n", win.ProcessName)
	if win.ClassName != "" {
		fmt.Fprintf(w, "Class: %s\n", win.ClassName)
	}
	fmt.Fprintf(w, "State: %s\n", win.State)
	if win.PrevState != "" {
		fmt.Fprintf(w, "Previous State: %s\n", win.PrevState)
	}
	fmt.Fprintf(w, "Rect: %s\n", models.FormatRect(win.Rect))
	if win.FloatingRect != nil {
		fmt.Fprintf(w, "Floating Rect: %s\n", models.FormatRect(*win.FloatingRect))
	}
	fmt.Fprintf(w, "Size Ratio: %.3f\n", win.SizeRatio)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
