// Package logging configures the process logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logFileName = "reels/reels.log"

// Setup configures zerolog for the process. An unknown level means info.
func Setup(level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(w).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger
}

// Console returns a human-readable writer for w.
func Console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, NoColor: true}
}

// OpenFile opens the log file for appending. An empty path means the XDG
// state directory. The terminal host logs here because stdout is the screen.
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		p, err := xdg.StateFile(logFileName)
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
