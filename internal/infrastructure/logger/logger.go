package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var global atomic.Pointer[zerolog.Logger]

func init() {
	l := build(os.Stdout, "console").Level(zerolog.InfoLevel)
	global.Store(&l)
}

// GetLogger returns the process logger. Until New is called it is an info level console logger.
func GetLogger() zerolog.Logger {
	return *global.Load()
}

// New installs a logger for level ("debug", "info", ...) and format ("json" or "console") as the
// process logger and returns it.
func New(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "json" && format != "console" {
		return zerolog.Logger{}, fmt.Errorf("unsupported log format %q", format)
	}

	l := build(os.Stdout, format).Level(lvl)
	zerolog.SetGlobalLevel(lvl)
	global.Store(&l)
	return l, nil
}

func build(out io.Writer, format string) zerolog.Logger {
	if format == "json" {
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}
