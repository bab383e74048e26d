package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger
)

// Mode selects where log output goes and how it is formatted
type Mode int

const (
	// ModeCLI writes text to dragonlog.log; the terminal belongs to the
	// command output or the TUI.
	ModeCLI Mode = iota
	// ModeServe writes JSON lines to serve.log and to stderr so a process
	// supervisor can collect them.
	ModeServe
)

// Config holds logger configuration
type Config struct {
	Mode      Mode
	Debug     bool
	ConfigDir string
}

func (c Config) filename() string {
	if c.Mode == ModeServe {
		return "serve.log"
	}
	return "dragonlog.log"
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	var out io.Writer = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, cfg.filename()),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	opts := log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           log.InfoLevel,
		Prefix:          "dragonlog",
	}
	if cfg.Debug {
		opts.Level = log.DebugLevel
	}

	switch cfg.Mode {
	case ModeServe:
		opts.Formatter = log.JSONFormatter
		out = io.MultiWriter(os.Stderr, out)
	default:
		// the TUI owns the screen; only debug runs mirror to stderr
		if cfg.Debug {
			out = io.MultiWriter(os.Stderr, out)
		}
	}

	Logger = log.NewWithOptions(out, opts)
	return nil
}

// Named returns a child logger carrying the given prefix. It never returns nil;
// before Init it discards everything.
func Named(prefix string) *log.Logger {
	if Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{Prefix: prefix})
	}
	return Logger.WithPrefix(prefix)
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
