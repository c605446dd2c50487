package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	Logger  = zerolog.Nop()
	logFile *os.File
)

// Options controls where and how much the logger writes
type Options struct {
	Level string // trace, debug, info, warn, error
	File  bool   // also append JSON lines to ~/.local/state/tilewm/tilewm.log
	// Output overrides stderr, mainly for tests
	Output io.Writer
}

// timestampHook adds timestamp at the end of each log event
type timestampHook struct{}

func (h timestampHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	e.Time("ts", time.Now())
}

// Init initializes the logging system with zerolog
func Init(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}
	zerolog.SetGlobalLevel(level)

	// Configure field names
	zerolog.MessageFieldName = "msg"

	out := opts.Output
	if out == nil {
		out = os.Stderr
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		}
	}

	if opts.File {
		logDir := filepath.Join(os.Getenv("HOME"), ".local", "state", "tilewm")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(filepath.Join(logDir, "tilewm.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		logFile = f
		out = zerolog.MultiLevelWriter(out, logFile)
	}

	// Create logger with hook that adds timestamp last
	Logger = zerolog.New(out).Hook(timestampHook{})

	return nil
}

// SetDebug lowers the global level to debug
func SetDebug(enabled bool) {
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// Close closes the log file
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// With returns a child logger tagged with a component name
func With(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// Debug returns a debug level event
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warn level event
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event
func Error() *zerolog.Event {
	return Logger.Error()
}
