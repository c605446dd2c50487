package config

import "github.com/yourusername/tilewm/internal/types"

// Config is the root configuration structure
type Config struct {
	General      GeneralConfig     `yaml:"general" json:"general"`
	IPC          IPCConfig         `yaml:"ipc" json:"ipc"`
	Logging      LoggingConfig     `yaml:"logging" json:"logging"`
	Workspaces   []WorkspaceConfig `yaml:"workspaces" json:"workspaces" validate:"dive"`
	WindowRules  []WindowRule      `yaml:"windowRules" json:"windowRules" validate:"dive"`
	MonitorRules []MonitorRule     `yaml:"monitorRules" json:"monitorRules" validate:"dive"`

	// path is where the config was loaded from, empty for defaults
	path string
}

// GeneralConfig contains global window manager settings
type GeneralConfig struct {
	DefaultTilingDirection types.TilingDirection `yaml:"defaultTilingDirection" json:"defaultTilingDirection" validate:"omitempty,tilingdirection"`
	FocusNewWindows        bool                  `yaml:"focusNewWindows" json:"focusNewWindows"`
}

// IPCConfig controls the IPC server
type IPCConfig struct {
	Address           string  `yaml:"address" json:"address" validate:"omitempty,hostname_port"`
	MaxConnections    int     `yaml:"maxConnections" json:"maxConnections" validate:"gte=0"`
	OutboundQueue     int     `yaml:"outboundQueue" json:"outboundQueue" validate:"gte=0"`
	CommandQueue      int     `yaml:"commandQueue" json:"commandQueue" validate:"gte=0"`
	MessagesPerSecond float64 `yaml:"messagesPerSecond" json:"messagesPerSecond" validate:"gte=0"`
	Burst             int     `yaml:"burst" json:"burst" validate:"gte=0"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=trace debug info warn error"`
	File  bool   `yaml:"file" json:"file"`
}

// WorkspaceConfig declares a workspace and the monitor it starts on
type WorkspaceConfig struct {
	Name    string `yaml:"name" json:"name" validate:"required"`
	Monitor string `yaml:"monitor,omitempty" json:"monitor,omitempty"` // monitor name, "primary", or empty for any
}

// WindowRule applies to windows matching every expression in Match
type WindowRule struct {
	Match        []string            `yaml:"match" json:"match" validate:"required,min=1,dive,required"`
	InitialState types.WindowState   `yaml:"initialState,omitempty" json:"initialState,omitempty" validate:"omitempty,windowstate"`
	Deny         []types.WindowState `yaml:"deny,omitempty" json:"deny,omitempty" validate:"dive,windowstate"`
	Workspace    string              `yaml:"workspace,omitempty" json:"workspace,omitempty"`

	matchers []Matcher
}

// MonitorRule restricts window states on a monitor
type MonitorRule struct {
	Monitor         string `yaml:"monitor" json:"monitor" validate:"required"`
	AllowFullscreen *bool  `yaml:"allowFullscreen,omitempty" json:"allowFullscreen,omitempty"`
	AllowFloating   *bool  `yaml:"allowFloating,omitempty" json:"allowFloating,omitempty"`
}
