// Package reconcile brings the managed window set in line with the windows
// the operating system reports. It only produces manage and unmanage
// commands; the window manager applies them like any other command.
package reconcile

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/models"
	"github.com/yourusername/tilewm/internal/types"
)

// NativeWindow is a top-level window as the OS reports it
type NativeWindow struct {
	Handle      uint64            `json:"handle" yaml:"handle"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	ProcessName string            `json:"processName,omitempty" yaml:"processName,omitempty"`
	ClassName   string            `json:"className,omitempty" yaml:"className,omitempty"`
	Rect        *types.Rect       `json:"rect,omitempty" yaml:"rect,omitempty"`
	State       types.WindowState `json:"state,omitempty" yaml:"state,omitempty"`
}

// Provider lists the windows currently open on the OS
type Provider interface {
	NativeWindows(ctx context.Context) ([]NativeWindow, error)
}

// Target is the window manager being reconciled, usually a client.Client
type Target interface {
	Windows(ctx context.Context) (*models.WindowsResult, error)
	Command(ctx context.Context, cmd command.Command) (map[string]interface{}, error)
}

// Plan returns the commands that make windows match natives: unmanage for
// every managed handle the OS no longer reports, then manage for every
// reported handle not yet managed. Both lists are ordered by handle.
func Plan(windows []*models.Container, natives []NativeWindow) []command.Command {
	managed := make(map[uint64]bool, len(windows))
	for _, w := range windows {
		managed[w.Handle] = true
	}
	live := make(map[uint64]bool, len(natives))
	for _, n := range natives {
		live[n.Handle] = true
	}

	var gone []uint64
	for h := range managed {
		if !live[h] {
			gone = append(gone, h)
		}
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i] < gone[j] })

	var fresh []NativeWindow
	seen := make(map[uint64]bool, len(natives))
	for _, n := range natives {
		if n.Handle == 0 || managed[n.Handle] || seen[n.Handle] {
			continue
		}
		seen[n.Handle] = true
		fresh = append(fresh, n)
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Handle < fresh[j].Handle })

	cmds := make([]command.Command, 0, len(gone)+len(fresh))
	for _, h := range gone {
		cmds = append(cmds, &command.UnmanageWindow{Handle: h})
	}
	for _, n := range fresh {
		cmds = append(cmds, &command.ManageWindow{
			Handle:      n.Handle,
			Title:       n.Title,
			ProcessName: n.ProcessName,
			ClassName:   n.ClassName,
			State:       n.State,
			Rect:        n.Rect,
		})
	}
	return cmds
}

// Sync reconciles target against provider once. It stops at the first
// failed command and reports how many were applied.
func Sync(ctx context.Context, target Target, provider Provider) (int, error) {
	natives, err := provider.NativeWindows(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list native windows: %w", err)
	}
	current, err := target.Windows(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query windows: %w", err)
	}

	cmds := Plan(current.Windows, natives)
	for i, cmd := range cmds {
		if _, err := target.Command(ctx, cmd); err != nil {
			return i, fmt.Errorf("%s: %w", cmd.Name(), err)
		}
	}
	logging.Debug().Int("native", len(natives)).Int("commands", len(cmds)).Msg("reconciled windows")
	return len(cmds), nil
}

// FileProvider reads the native window list from a YAML or JSON file.
// It stands in for a platform provider in scripts and tests.
type FileProvider struct {
	Path string
}

type windowList struct {
	Windows []NativeWindow `yaml:"windows"`
}

func (p FileProvider) NativeWindows(_ context.Context) ([]NativeWindow, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	var list windowList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.Path, err)
	}
	return list.Windows, nil
}
