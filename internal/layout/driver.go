package layout

import (
	"context"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/logging"
)

// Driver is the render/layout collaborator. It receives each drained redraw
// batch and performs the native placement and visibility changes. Apply runs
// on the window manager's writer goroutine, so it may read the tree but must
// not keep references to it after returning.
type Driver interface {
	Apply(ctx context.Context, tree *container.Tree, batch []*container.Container) error
}

// DriverFunc adapts a function to the Driver interface
type DriverFunc func(ctx context.Context, tree *container.Tree, batch []*container.Container) error

// Apply calls f
func (f DriverFunc) Apply(ctx context.Context, tree *container.Tree, batch []*container.Container) error {
	return f(ctx, tree, batch)
}

// LogDriver is a headless driver: it computes rects for the batch and logs
// what a native driver would have changed.
type LogDriver struct {
	Gap float64
}

// Apply arranges every container in the batch and logs the result
func (d LogDriver) Apply(ctx context.Context, tree *container.Tree, batch []*container.Container) error {
	for _, c := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !tree.Contains(c) {
			logging.Debug().Str("container", c.ID.String()).Msg("skipping detached container")
			continue
		}

		Arrange(tree, c, d.Gap)

		ev := logging.Debug().
			Str("container", c.ID.String()).
			Str("kind", c.Kind.String()).
			Float64("x", c.Rect.X).
			Float64("y", c.Rect.Y).
			Float64("width", c.Rect.Width).
			Float64("height", c.Rect.Height)
		if c.IsWindow() {
			ev = ev.Uint64("handle", c.Window.Handle).Str("state", string(c.Window.State))
		}
		ev.Msg("redraw")
	}
	return nil
}
