package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/tilewm/internal/container"
	"github.com/yourusername/tilewm/internal/types"
)

const (
	DefaultConfigDir  = ".config/tilewm"
	DefaultConfigFile = "config.yaml"

	DefaultAddress           = "127.0.0.1:6123"
	DefaultMaxConnections    = 64
	DefaultOutboundQueue     = 256
	DefaultCommandQueue      = 128
	DefaultMessagesPerSecond = 200
	DefaultBurst             = 100
)

var (
	// ErrNotFound is returned when no config file exists at the default location
	ErrNotFound = errors.New("no config file found")
	// ErrDenied is wrapped by every policy rejection
	ErrDenied = errors.New("denied by configuration")
)

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.General.DefaultTilingDirection == "" {
		c.General.DefaultTilingDirection = types.TilingHorizontal
	}
	if c.IPC.Address == "" {
		c.IPC.Address = DefaultAddress
	}
	if c.IPC.MaxConnections == 0 {
		c.IPC.MaxConnections = DefaultMaxConnections
	}
	if c.IPC.OutboundQueue == 0 {
		c.IPC.OutboundQueue = DefaultOutboundQueue
	}
	if c.IPC.CommandQueue == 0 {
		c.IPC.CommandQueue = DefaultCommandQueue
	}
	if c.IPC.MessagesPerSecond == 0 {
		c.IPC.MessagesPerSecond = DefaultMessagesPerSecond
	}
	if c.IPC.Burst == 0 {
		c.IPC.Burst = DefaultBurst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// LoadConfig loads configuration from the specified path or default location
// If path is empty, uses ~/.config/tilewm/config.yaml
// Supports both .yaml and .json extensions
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		// Try YAML first, then JSON
		yamlPath := filepath.Join(home, DefaultConfigDir, "config.yaml")
		jsonPath := filepath.Join(home, DefaultConfigDir, "config.json")

		if _, err := os.Stat(yamlPath); err == nil {
			path = yamlPath
		} else if _, err := os.Stat(jsonPath); err == nil {
			path = jsonPath
		} else {
			return nil, fmt.Errorf("%w at %s or %s", ErrNotFound, yamlPath, jsonPath)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	cfg, err := LoadConfigFromBytes(data, format)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when
// path is empty and no file exists at the default location
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, ErrNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadConfigFromBytes loads configuration from raw bytes
// format should be "yaml" or "json"
func LoadConfigFromBytes(data []byte, format string) (*Config, error) {
	var cfg Config

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// PropsOf extracts the rule-matching properties of a window container
func PropsOf(w *container.Container) WindowProps {
	return WindowProps{
		Process: w.Window.ProcessName,
		Class:   w.Window.ClassName,
		Title:   w.Window.Title,
	}
}

// GetWindowRule finds the first rule matching props
func (c *Config) GetWindowRule(props WindowProps) *WindowRule {
	for i := range c.WindowRules {
		if c.WindowRules[i].Matches(props) {
			return &c.WindowRules[i]
		}
	}
	return nil
}

// InitialState returns the state a newly managed window starts in
func (c *Config) InitialState(props WindowProps) types.WindowState {
	if rule := c.GetWindowRule(props); rule != nil && rule.InitialState != "" {
		return rule.InitialState
	}
	return types.StateTiling
}

// InitialWorkspace returns the workspace a rule assigns new windows to
func (c *Config) InitialWorkspace(props WindowProps) string {
	if rule := c.GetWindowRule(props); rule != nil {
		return rule.Workspace
	}
	return ""
}

// GetMonitorRule returns the rule for a monitor, if any
func (c *Config) GetMonitorRule(name string) *MonitorRule {
	for i := range c.MonitorRules {
		if c.MonitorRules[i].Monitor == name {
			return &c.MonitorRules[i]
		}
	}
	return nil
}

// CheckTransition reports whether window w on monitor may enter target.
// A nil monitor skips monitor rules.
func (c *Config) CheckTransition(w, monitor *container.Container, target types.WindowState) error {
	props := PropsOf(w)
	for i := range c.WindowRules {
		rule := &c.WindowRules[i]
		if !rule.Matches(props) {
			continue
		}
		for _, denied := range rule.Deny {
			if denied == target {
				return fmt.Errorf("%w: window rule %v forbids %s", ErrDenied, rule.Match, target)
			}
		}
	}

	if monitor == nil || monitor.Monitor == nil {
		return nil
	}
	rule := c.GetMonitorRule(monitor.Monitor.Name)
	if rule == nil {
		return nil
	}
	if target == types.StateFullscreen && rule.AllowFullscreen != nil && !*rule.AllowFullscreen {
		return fmt.Errorf("%w: fullscreen is not allowed on monitor %s", ErrDenied, rule.Monitor)
	}
	if target == types.StateFloating && rule.AllowFloating != nil && !*rule.AllowFloating {
		return fmt.Errorf("%w: floating is not allowed on monitor %s", ErrDenied, rule.Monitor)
	}
	return nil
}

// WorkspacesFor returns the configured workspaces that start on a monitor.
// Workspaces with no monitor go to the primary one.
func (c *Config) WorkspacesFor(monitorName string, primary bool) []WorkspaceConfig {
	var out []WorkspaceConfig
	for _, ws := range c.Workspaces {
		switch {
		case ws.Monitor == monitorName:
			out = append(out, ws)
		case ws.Monitor == "primary" && primary:
			out = append(out, ws)
		case ws.Monitor == "" && primary:
			out = append(out, ws)
		}
	}
	return out
}
