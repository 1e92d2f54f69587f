// Package logging sets up the zerolog logger. The terminal UI owns stdout,
// so output goes to a file under the XDG state directory.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const appName = "tilawa"

// Options configures Setup.
type Options struct {
	Level string // "debug", "info", "warn" or "error"
	File  string // empty means $XDG_STATE_HOME/tilawa/tilawa.log
}

// Setup configures the global logger and returns it along with a function
// that closes the log file.
func Setup(opts Options) (zerolog.Logger, func() error, error) {
	path := opts.File
	if path == "" {
		var err error
		path, err = xdg.StateFile(filepath.Join(appName, appName+".log"))
		if err != nil {
			return zerolog.Nop(), nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	logger := New(f, opts.Level)
	log.Logger = logger
	return logger, f.Close, nil
}

// New builds a console-formatted logger writing to w.
func New(w io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level to zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
