package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/layout"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/models"
	"github.com/yourusername/tilewm/internal/reconcile"
	"github.com/yourusername/tilewm/internal/server"
	"github.com/yourusername/tilewm/internal/state"
	"github.com/yourusername/tilewm/internal/types"
	"github.com/yourusername/tilewm/internal/wm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the window manager and its IPC server",
	Long: `Runs the window manager with the headless layout driver and serves the
WebSocket IPC until interrupted. Monitors can be declared up front with
--monitor NAME=WIDTHxHEIGHT[+X+Y]; the first one is primary.`,
	RunE: runServe,
}

func serveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArray("monitor", nil, "Monitor to add at startup, NAME=WxH[+X+Y] (repeatable)")
	f.String("windows", "", "Window list file to manage at startup (YAML or JSON)")
	f.Duration("grace", 5*time.Second, "How long shutdown waits for clients")
	f.Float64("gap", 0, "Gap between tiled windows in pixels")
	f.Bool("watch", true, "Reload the config file when it changes")
	f.Bool("log-file", false, "Also write logs to ~/.local/state/tilewm/tilewm.log")

	for _, name := range []string{"monitor", "windows", "grace", "gap", "watch", "log-file"} {
		if err := viper.BindPFlag("serve."+name, f.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(viper.GetString("config"))
	if err != nil {
		return err
	}

	level := viper.GetString("log-level")
	if level == "" {
		level = cfg.Logging.Level
	}
	if err := logging.Init(logging.Options{
		Level: level,
		File:  cfg.Logging.File || viper.GetBool("serve.log-file"),
	}); err != nil {
		return err
	}

	monitors, err := parseMonitors(viper.GetStringSlice("serve.monitor"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := wm.New(wm.Options{
		Config:    cfg,
		Driver:    layout.LogDriver{Gap: viper.GetFloat64("serve.gap")},
		QueueSize: cfg.IPC.CommandQueue,
	})

	opts := server.OptionsFromConfig(cfg.IPC)
	if viper.IsSet("addr") {
		opts.Address = viper.GetString("addr")
	}
	srv := server.New(mgr, opts)

	// The manager outlives the server so shutdown can answer in-flight
	// commands.
	mgrCtx, stopManager := context.WithCancel(context.Background())
	defer stopManager()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mgr.Run(mgrCtx)
	})
	g.Go(func() error {
		defer stopManager()
		return srv.Run(gctx, viper.GetDuration("serve.grace"))
	})
	g.Go(func() error {
		return seed(gctx, mgr, monitors, viper.GetString("serve.windows"))
	})
	if path := cfg.Path(); path != "" && viper.GetBool("serve.watch") {
		g.Go(func() error {
			return config.Watch(gctx, path, config.DefaultDebounce, func(next *config.Config) {
				err := mgr.Submit(gctx, &command.ReloadConfig{Config: next}, func(_ command.Result, err error) {
					if err != nil {
						logging.Error().Err(err).Msg("config reload failed")
					}
				})
				if err != nil {
					logging.Warn().Err(err).Msg("config reload not submitted")
				}
			})
		})
	}

	logging.Info().Str("address", opts.Address).Str("config", cfg.Path()).Msg("tilewm starting")
	if err := g.Wait(); err != nil {
		return err
	}
	logging.Info().Msg("tilewm stopped")
	return nil
}

// seed adds the startup monitors, then manages the windows listed in
// windowsFile
func seed(ctx context.Context, mgr *wm.Manager, monitors []*command.AddMonitor, windowsFile string) error {
	for _, m := range monitors {
		if _, err := mgr.Execute(ctx, m); err != nil {
			return fmt.Errorf("add monitor %s: %w", m.MonitorName, err)
		}
	}
	if windowsFile == "" {
		return nil
	}
	n, err := reconcile.Sync(ctx, localTarget{mgr}, reconcile.FileProvider{Path: windowsFile})
	if err != nil {
		return err
	}
	logging.Info().Int("commands", n).Str("file", windowsFile).Msg("initial windows managed")
	return nil
}

// localTarget lets reconcile drive an in-process manager
type localTarget struct {
	mgr *wm.Manager
}

func (t localTarget) Windows(ctx context.Context) (*models.WindowsResult, error) {
	var res *models.WindowsResult
	if err := t.mgr.Query(ctx, func(st *state.WmState) { res = server.Windows(st) }); err != nil {
		return nil, err
	}
	return res, nil
}

func (t localTarget) Command(ctx context.Context, cmd command.Command) (map[string]interface{}, error) {
	return t.mgr.Execute(ctx, cmd)
}

// parseMonitors parses NAME=WxH[+X+Y] arguments. The first monitor is primary.
func parseMonitors(args []string) ([]*command.AddMonitor, error) {
	out := make([]*command.AddMonitor, 0, len(args))
	for i, arg := range args {
		name, geom, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid monitor %q, want NAME=WxH[+X+Y]", arg)
		}

		r, err := parseGeometry(geom)
		if err != nil {
			return nil, fmt.Errorf("invalid monitor %q: %w", arg, err)
		}

		m := &command.AddMonitor{MonitorName: name, Rect: r, Primary: i == 0}
		if err := command.Validate(m); err != nil {
			return nil, fmt.Errorf("invalid monitor %q: %w", arg, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// parseGeometry parses WxH or WxH+X+Y
func parseGeometry(geom string) (types.Rect, error) {
	var r types.Rect
	size, pos, hasPos := strings.Cut(geom, "+")
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return r, fmt.Errorf("want WxH[+X+Y]")
	}
	var err error
	if r.Width, err = strconv.ParseFloat(w, 64); err != nil {
		return r, err
	}
	if r.Height, err = strconv.ParseFloat(h, 64); err != nil {
		return r, err
	}
	if hasPos {
		x, y, ok := strings.Cut(pos, "+")
		if !ok {
			return r, fmt.Errorf("want WxH+X+Y")
		}
		if r.X, err = strconv.ParseFloat(x, 64); err != nil {
			return r, err
		}
		if r.Y, err = strconv.ParseFloat(y, 64); err != nil {
			return r, err
		}
	}
	return r, nil
}
