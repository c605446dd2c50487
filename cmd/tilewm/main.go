package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/tilewm/internal/client"
	"github.com/yourusername/tilewm/internal/command"
	"github.com/yourusername/tilewm/internal/config"
	"github.com/yourusername/tilewm/internal/events"
	"github.com/yourusername/tilewm/internal/logging"
	"github.com/yourusername/tilewm/internal/output"
	"github.com/yourusername/tilewm/internal/reconcile"
)

var (
	jsonOutput bool
	noColor    bool

	showTree   bool
	showASCII  bool
	showIDs    bool
	showWidth  int
	showHeight int

	commandSets []string
	syncFrom    string

	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	keyColor     = color.New(color.FgYellow)
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "tilewm",
	Short: "Tiling window manager control plane",
	Long: `tilewm keeps the window tree for a tiling window manager and serves it
over a WebSocket IPC. "tilewm serve" runs the manager; every other command is
a client of a running instance.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query window manager state",
}

var queryMonitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "Show monitors, workspaces and windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext()
		defer cancel()
		c := newClient()
		defer c.Close()

		res, err := c.Monitors(ctx)
		if err != nil {
			return fmt.Errorf("failed to query monitors: %w", err)
		}
		if jsonOutput {
			return printJSON(res)
		}

		if showTree {
			output.PrintTree(os.Stdout, res, visualizationOptions())
			return nil
		}
		output.PrintMonitorsTable(os.Stdout, res)
		return nil
	},
}

var queryWindowsCmd = &cobra.Command{
	Use:   "windows [id-prefix]",
	Short: "List managed windows, or show one in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext()
		defer cancel()
		c := newClient()
		defer c.Close()

		res, err := c.Windows(ctx)
		if err != nil {
			return fmt.Errorf("failed to query windows: %w", err)
		}

		if len(args) == 1 {
			for _, w := range res.Windows {
				if strings.HasPrefix(w.ID, args[0]) {
					if jsonOutput {
						return printJSON(w)
					}
					output.PrintWindowDetail(os.Stdout, w)
					return nil
				}
			}
			return fmt.Errorf("no window with id %s", args[0])
		}

		if jsonOutput {
			return printJSON(res)
		}
		output.PrintWindowsTable(os.Stdout, res)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Draw every monitor's displayed workspace in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext()
		defer cancel()
		c := newClient()
		defer c.Close()

		res, err := c.Monitors(ctx)
		if err != nil {
			return fmt.Errorf("failed to query monitors: %w", err)
		}
		output.PrintVisualization(os.Stdout, res, visualizationOptions())
		return nil
	},
}

var commandCmd = &cobra.Command{
	Use:   "command <name> [json-params]",
	Short: "Run a window manager command",
	Long: `Runs one command. Parameters come from an optional JSON object and from
--set key=value flags, which take precedence. Values given with --set are
parsed as JSON when possible and used as strings otherwise.

Examples:
  tilewm command toggle_window_state --set state=floating
  tilewm command focus_direction '{"direction":"left"}'
  tilewm command manage_window --set handle=4242 --set title=editor`,
	Args: cobra.RangeArgs(1, 2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, n := range command.Names() {
			names = append(names, string(n))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := commandParams(args, commandSets)
		if err != nil {
			return err
		}
		// Validate locally so typos never reach the server.
		c, err := command.FromParams(params)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext()
		defer cancel()
		cl := newClient()
		defer cl.Close()

		result, err := cl.Command(ctx, c)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(result)
		}

		successColor.Printf("✓ %s\n", c.Name())
		printResult(result)
		return nil
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List command names",
	Run: func(cmd *cobra.Command, args []string) {
		for _, n := range command.Names() {
			fmt.Println(n)
		}
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe [kind...]",
	Short: "Print events as they happen",
	Long:  "Prints events of the given kinds, or of every kind, until interrupted.",
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var kinds []string
		for _, k := range events.AllKinds {
			kinds = append(kinds, string(k))
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := newClient()
		defer c.Close()

		subCtx, cancel := context.WithTimeout(ctx, viper.GetDuration("timeout"))
		evts, err := c.Subscribe(subCtx, args...)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-evts:
				if !ok {
					if err := c.Err(); err != nil {
						return fmt.Errorf("connection lost: %w", err)
					}
					return nil
				}
				if jsonOutput {
					if err := enc.Encode(ev); err != nil {
						return err
					}
					continue
				}
				output.PrintEvent(os.Stdout, ev)
			}
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage and unmanage windows to match a window list",
	Long: `Reads the list of open windows from a YAML or JSON file and sends the
manage_window and unmanage_window commands needed to match it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext()
		defer cancel()
		c := newClient()
		defer c.Close()

		n, err := reconcile.Sync(ctx, c, reconcile.FileProvider{Path: syncFrom})
		if err != nil {
			return err
		}
		successColor.Printf("✓ %d commands applied\n", n)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(viper.GetString("config"))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cfg)
		}
		if p := cfg.Path(); p != "" {
			keyColor.Print("# loaded from ")
			fmt.Println(p)
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("config")
		if len(args) == 1 {
			path = args[0]
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		successColor.Print("✓ ")
		fmt.Printf("%s is valid (%d workspaces, %d window rules, %d monitor rules)\n",
			cfg.Path(), len(cfg.Workspaces), len(cfg.WindowRules), len(cfg.MonitorRules))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("addr", config.DefaultAddress, "IPC address (host:port)")
	flags.Duration("timeout", client.DefaultTimeout, "Request timeout")
	flags.String("config", "", "Config file (default ~/.config/tilewm/config.yaml)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	for _, name := range []string{"addr", "timeout", "config", "log-level"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("TILEWM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(queryMonitorsCmd)
	queryCmd.AddCommand(queryWindowsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(commandCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	showCmd.Flags().BoolVar(&showASCII, "ascii", false, "Draw with ASCII instead of box characters")
	showCmd.Flags().BoolVar(&showIDs, "ids", false, "Show window IDs")
	showCmd.Flags().IntVar(&showWidth, "width", 0, "Canvas width (default terminal width)")
	showCmd.Flags().IntVar(&showHeight, "height", 0, "Canvas height (default terminal height)")
	queryMonitorsCmd.Flags().BoolVar(&showTree, "tree", false, "Print the container tree")
	queryMonitorsCmd.Flags().BoolVar(&showIDs, "ids", false, "Show container IDs in the tree")

	commandCmd.Flags().StringArrayVar(&commandSets, "set", nil, "Set a parameter (key=value), repeatable")

	syncCmd.Flags().StringVar(&syncFrom, "from", "", "Window list file (YAML or JSON)")
	_ = syncCmd.MarkFlagRequired("from")

	serveFlags(serveCmd)

	cobra.OnInitialize(func() {
		if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}
	})
}

func main() {
	if err := logging.Init(logging.Options{Level: "warn"}); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	defer logging.Close()

	if err := rootCmd.Execute(); err != nil {
		printError(err.Error())
		logging.Close()
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.NewClient(viper.GetString("addr"), viper.GetDuration("timeout"))
}

func requestContext() (context.Context, context.CancelFunc) {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// commandParams merges the JSON argument and --set pairs into request params
func commandParams(args, sets []string) (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
			return nil, fmt.Errorf("params must be a JSON object: %w", err)
		}
	}
	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		params[key] = v
	}
	params[command.NameKey] = args[0]
	return params, nil
}

func visualizationOptions() output.VisualizationOptions {
	opts := output.DefaultVisualizationOptions()
	if showASCII {
		opts.UseUnicode = false
	}
	opts.ShowIDs = showIDs
	if showWidth > 0 {
		opts.MaxWidth = showWidth
	}
	if showHeight > 0 {
		opts.MaxHeight = showHeight
	}
	return opts
}

func printResult(result map[string]interface{}) {
	keys := make([]string, 0, len(result))
	for k := range result {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		keyColor.Printf("%s: ", k)
		fmt.Println(result[k])
	}
}

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printError(msg string) {
	if color.NoColor {
		fmt.Fprintln(os.Stderr, "Error:", msg)
		return
	}
	errorColor.Fprint(os.Stderr, "✗ Error: ")
	fmt.Fprintln(os.Stderr, msg)
}
